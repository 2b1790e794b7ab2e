package namespace

import (
	"github.com/temirov/glmigrate/internal/gitlab"
)

// NodeKind distinguishes the two cases of a forest node.
type NodeKind int

// Node kinds.
const (
	NodeKindGroup NodeKind = iota + 1
	NodeKindProject
)

// Node is either a group subtree or a project leaf. Exactly one of Group and
// Project is set, as indicated by Kind.
type Node struct {
	Kind    NodeKind
	Group   *GroupNode
	Project *gitlab.Project
}

// GroupNode owns a group and its ordered children.
type GroupNode struct {
	Group    gitlab.Group
	Children []Node
}

// Forest is the namespace hierarchy of a single instance.
type Forest struct {
	Roots          []Node
	OrphanGroups   []gitlab.Group
	OrphanProjects []*gitlab.Project
}

// NewGroupNode wraps a group subtree as a node.
func NewGroupNode(groupNode *GroupNode) Node {
	return Node{Kind: NodeKindGroup, Group: groupNode}
}

// NewProjectNode wraps a project as a leaf node.
func NewProjectNode(project *gitlab.Project) Node {
	return Node{Kind: NodeKindProject, Project: project}
}

// Build attaches groups and projects into a forest.
//
// Groups without a parent and projects without an owning group are roots.
// Children keep the relative order of the input listings, group children
// first. Entities whose parent is not among the supplied groups are reported
// as orphans instead of being attached. Duplicate identifiers keep their first
// occurrence.
func Build(groups []gitlab.Group, projects []*gitlab.Project) Forest {
	uniqueGroups := deduplicateGroups(groups)
	uniqueProjects := deduplicateProjects(projects)

	groupsByParent := make(map[int][]gitlab.Group, len(uniqueGroups))
	for _, group := range uniqueGroups {
		if group.ParentID > 0 {
			groupsByParent[group.ParentID] = append(groupsByParent[group.ParentID], group)
		}
	}

	projectsByNamespace := make(map[int][]*gitlab.Project, len(uniqueProjects))
	for _, project := range uniqueProjects {
		if !IsRootProject(project) {
			projectsByNamespace[project.Namespace.ID] = append(projectsByNamespace[project.Namespace.ID], project)
		}
	}

	builder := forestBuilder{
		groupsByParent:      groupsByParent,
		projectsByNamespace: projectsByNamespace,
		attachedGroups:      make(map[int]struct{}, len(uniqueGroups)),
		attachedProjects:    make(map[int]struct{}, len(uniqueProjects)),
	}

	forest := Forest{}
	for _, group := range uniqueGroups {
		if group.ParentID == 0 {
			forest.Roots = append(forest.Roots, NewGroupNode(builder.attach(group)))
		}
	}
	for _, project := range uniqueProjects {
		if IsRootProject(project) {
			builder.attachedProjects[project.ID] = struct{}{}
			forest.Roots = append(forest.Roots, NewProjectNode(project))
		}
	}

	for _, group := range uniqueGroups {
		if _, attached := builder.attachedGroups[group.ID]; !attached {
			forest.OrphanGroups = append(forest.OrphanGroups, group)
		}
	}
	for _, project := range uniqueProjects {
		if _, attached := builder.attachedProjects[project.ID]; !attached {
			forest.OrphanProjects = append(forest.OrphanProjects, project)
		}
	}

	return forest
}

type forestBuilder struct {
	groupsByParent      map[int][]gitlab.Group
	projectsByNamespace map[int][]*gitlab.Project
	attachedGroups      map[int]struct{}
	attachedProjects    map[int]struct{}
}

func (builder forestBuilder) attach(group gitlab.Group) *GroupNode {
	builder.attachedGroups[group.ID] = struct{}{}
	groupNode := &GroupNode{Group: group}

	for _, childGroup := range builder.groupsByParent[group.ID] {
		if _, attached := builder.attachedGroups[childGroup.ID]; attached {
			continue
		}
		groupNode.Children = append(groupNode.Children, NewGroupNode(builder.attach(childGroup)))
	}

	for _, childProject := range builder.projectsByNamespace[group.ID] {
		builder.attachedProjects[childProject.ID] = struct{}{}
		groupNode.Children = append(groupNode.Children, NewProjectNode(childProject))
	}

	return groupNode
}

// IsRootProject reports whether a project starts its own tree: it lives in a
// personal namespace or has no namespace at all.
func IsRootProject(project *gitlab.Project) bool {
	return project.Namespace.ID == 0 || project.Namespace.Kind == gitlab.NamespaceKindUser
}

func deduplicateGroups(groups []gitlab.Group) []gitlab.Group {
	seen := make(map[int]struct{}, len(groups))
	unique := make([]gitlab.Group, 0, len(groups))
	for _, group := range groups {
		if _, duplicate := seen[group.ID]; duplicate {
			continue
		}
		seen[group.ID] = struct{}{}
		unique = append(unique, group)
	}
	return unique
}

func deduplicateProjects(projects []*gitlab.Project) []*gitlab.Project {
	seen := make(map[int]struct{}, len(projects))
	unique := make([]*gitlab.Project, 0, len(projects))
	for _, project := range projects {
		if project == nil {
			continue
		}
		if _, duplicate := seen[project.ID]; duplicate {
			continue
		}
		seen[project.ID] = struct{}{}
		unique = append(unique, project)
	}
	return unique
}

// Walk visits every node in pre-order with its depth, roots at depth zero.
func (forest Forest) Walk(visit func(depth int, node Node)) {
	for _, root := range forest.Roots {
		walkNode(root, 0, visit)
	}
}

func walkNode(node Node, depth int, visit func(depth int, node Node)) {
	visit(depth, node)
	if node.Kind != NodeKindGroup {
		return
	}
	for _, child := range node.Group.Children {
		walkNode(child, depth+1, visit)
	}
}

// Projects lists every project attached to the forest in pre-order.
func (forest Forest) Projects() []*gitlab.Project {
	var projects []*gitlab.Project
	forest.Walk(func(_ int, node Node) {
		if node.Kind == NodeKindProject {
			projects = append(projects, node.Project)
		}
	})
	return projects
}

// GroupCount reports the number of groups attached to the forest.
func (forest Forest) GroupCount() int {
	count := 0
	forest.Walk(func(_ int, node Node) {
		if node.Kind == NodeKindGroup {
			count++
		}
	})
	return count
}

// HasOrphans reports whether any fetched entity could not be attached.
func (forest Forest) HasOrphans() bool {
	return len(forest.OrphanGroups) > 0 || len(forest.OrphanProjects) > 0
}
