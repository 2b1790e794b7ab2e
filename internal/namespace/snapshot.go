package namespace

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
)

const (
	groupListingErrorTemplateConstant   = "unable to fetch groups: %w"
	projectListingErrorTemplateConstant = "unable to fetch projects: %w"
	snapshotFetchedMessageConstant      = "Fetched namespace snapshot"
	orphanGroupMessageConstant          = "Group parent not found in snapshot"
	orphanProjectMessageConstant        = "Project namespace not found in snapshot"
	logFieldGroupCountConstant          = "group_count"
	logFieldProjectCountConstant        = "project_count"
	logFieldRootCountConstant           = "root_count"
	logFieldGroupConstant               = "group"
	logFieldProjectConstant             = "project"
	logFieldParentIDConstant            = "parent_id"
	logFieldNamespaceIDConstant         = "namespace_id"
	fullPathSeparatorConstant           = "/"
)

// Lister retrieves complete group and project listings from one instance.
type Lister interface {
	ListGroups(executionContext context.Context) ([]gitlab.Group, error)
	ListProjects(executionContext context.Context) ([]*gitlab.Project, error)
}

// Snapshot is the result of one fetch cycle. It replaces any earlier snapshot
// of the same instance wholesale.
type Snapshot struct {
	Groups   []gitlab.Group
	Projects []*gitlab.Project
	Forest   Forest
}

// Fetch lists groups and projects and builds their forest. A listing failure
// aborts the cycle; partial listings are never turned into a forest.
func Fetch(executionContext context.Context, lister Lister, logger *zap.Logger) (Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	groups, groupsError := lister.ListGroups(executionContext)
	if groupsError != nil {
		return Snapshot{}, fmt.Errorf(groupListingErrorTemplateConstant, groupsError)
	}

	projects, projectsError := lister.ListProjects(executionContext)
	if projectsError != nil {
		return Snapshot{}, fmt.Errorf(projectListingErrorTemplateConstant, projectsError)
	}

	forest := Build(groups, projects)

	for _, orphanGroup := range forest.OrphanGroups {
		logger.Warn(
			orphanGroupMessageConstant,
			zap.String(logFieldGroupConstant, orphanGroup.FullPath),
			zap.Int(logFieldParentIDConstant, orphanGroup.ParentID),
		)
	}
	for _, orphanProject := range forest.OrphanProjects {
		logger.Warn(
			orphanProjectMessageConstant,
			zap.String(logFieldProjectConstant, orphanProject.Name),
			zap.Int(logFieldNamespaceIDConstant, orphanProject.Namespace.ID),
		)
	}

	logger.Info(
		snapshotFetchedMessageConstant,
		zap.Int(logFieldGroupCountConstant, len(groups)),
		zap.Int(logFieldProjectCountConstant, len(projects)),
		zap.Int(logFieldRootCountConstant, len(forest.Roots)),
	)

	return Snapshot{Groups: groups, Projects: projects, Forest: forest}, nil
}

// FindGroupByName returns the first group with the given name.
func (snapshot Snapshot) FindGroupByName(name string) (gitlab.Group, bool) {
	for _, group := range snapshot.Groups {
		if group.Name == name {
			return group, true
		}
	}
	return gitlab.Group{}, false
}

// ProjectsUnder returns projects whose namespace is the group with the given
// full path or one of its descendants. An empty path selects every project.
func (snapshot Snapshot) ProjectsUnder(groupFullPath string) []*gitlab.Project {
	trimmedPath := strings.Trim(groupFullPath, fullPathSeparatorConstant)
	if len(trimmedPath) == 0 {
		return append([]*gitlab.Project(nil), snapshot.Projects...)
	}

	var selected []*gitlab.Project
	for _, project := range snapshot.Projects {
		namespacePath := project.Namespace.FullPath
		if namespacePath == trimmedPath || strings.HasPrefix(namespacePath, trimmedPath+fullPathSeparatorConstant) {
			selected = append(selected, project)
		}
	}
	return selected
}
