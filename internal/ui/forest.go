package ui

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/glmigrate/internal/namespace"
)

// Forest output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

const (
	indentationUnitConstant           = "  "
	groupLineTemplateConstant         = "%s%s/ (%s)\n"
	projectLineTemplateConstant       = "%s%s\n"
	orphanGroupTemplateConstant       = "orphan group %s (parent %d)\n"
	orphanProjectTemplateConstant     = "orphan project %s (namespace %d)\n"
	yamlIndentConstant                = 2
	unsupportedFormatTemplateConstant = "unsupported output format %q"
	nodeTypeGroupConstant             = "group"
	nodeTypeProjectConstant           = "project"
)

// ForestDocument is the YAML shape of a forest.
type ForestDocument struct {
	Roots          []NodeDocument `yaml:"roots"`
	OrphanGroups   []string       `yaml:"orphan_groups,omitempty"`
	OrphanProjects []string       `yaml:"orphan_projects,omitempty"`
}

// NodeDocument is the YAML shape of one forest node.
type NodeDocument struct {
	Type       string         `yaml:"type"`
	ID         int            `yaml:"id"`
	Name       string         `yaml:"name"`
	Path       string         `yaml:"path"`
	Visibility string         `yaml:"visibility,omitempty"`
	Children   []NodeDocument `yaml:"children,omitempty"`
}

// RenderForest writes forest to writer in format.
func RenderForest(writer io.Writer, forest namespace.Forest, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return renderForestText(writer, forest)
	case FormatYAML:
		return renderForestYAML(writer, forest)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
}

func renderForestText(writer io.Writer, forest namespace.Forest) error {
	var builder strings.Builder
	forest.Walk(func(depth int, node namespace.Node) {
		indentation := strings.Repeat(indentationUnitConstant, depth)
		switch node.Kind {
		case namespace.NodeKindGroup:
			fmt.Fprintf(&builder, groupLineTemplateConstant, indentation, node.Group.Group.Name, node.Group.Group.FullPath)
		case namespace.NodeKindProject:
			fmt.Fprintf(&builder, projectLineTemplateConstant, indentation, node.Project.Name)
		}
	})
	for _, orphanGroup := range forest.OrphanGroups {
		fmt.Fprintf(&builder, orphanGroupTemplateConstant, orphanGroup.FullPath, orphanGroup.ParentID)
	}
	for _, orphanProject := range forest.OrphanProjects {
		fmt.Fprintf(&builder, orphanProjectTemplateConstant, orphanProject.Name, orphanProject.Namespace.ID)
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func renderForestYAML(writer io.Writer, forest namespace.Forest) error {
	document := BuildForestDocument(forest)

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

// BuildForestDocument converts forest into its YAML shape.
func BuildForestDocument(forest namespace.Forest) ForestDocument {
	document := ForestDocument{Roots: make([]NodeDocument, 0, len(forest.Roots))}
	for _, root := range forest.Roots {
		document.Roots = append(document.Roots, buildNodeDocument(root))
	}
	for _, orphanGroup := range forest.OrphanGroups {
		document.OrphanGroups = append(document.OrphanGroups, orphanGroup.FullPath)
	}
	for _, orphanProject := range forest.OrphanProjects {
		document.OrphanProjects = append(document.OrphanProjects, orphanProject.Name)
	}
	return document
}

func buildNodeDocument(node namespace.Node) NodeDocument {
	if node.Kind == namespace.NodeKindProject {
		return NodeDocument{
			Type: nodeTypeProjectConstant,
			ID:   node.Project.ID,
			Name: node.Project.Name,
			Path: node.Project.Path,
		}
	}

	group := node.Group.Group
	document := NodeDocument{
		Type:       nodeTypeGroupConstant,
		ID:         group.ID,
		Name:       group.Name,
		Path:       group.FullPath,
		Visibility: string(group.Visibility),
	}
	for _, child := range node.Group.Children {
		document.Children = append(document.Children, buildNodeDocument(child))
	}
	return document
}
