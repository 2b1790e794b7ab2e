package namespace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/namespace"
)

const (
	testListingFailureMessageConstant = "listing unavailable"
	testOrphanProjectMessageConstant  = "Project namespace not found in snapshot"
)

type stubLister struct {
	groups        []gitlab.Group
	projects      []*gitlab.Project
	groupsError   error
	projectsError error
}

func (lister stubLister) ListGroups(context.Context) ([]gitlab.Group, error) {
	return lister.groups, lister.groupsError
}

func (lister stubLister) ListProjects(context.Context) ([]*gitlab.Project, error) {
	return lister.projects, lister.projectsError
}

func TestFetchBuildsSnapshot(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	lister := stubLister{
		groups:   []gitlab.Group{group(1, 0), group(2, 1)},
		projects: []*gitlab.Project{project(10, 2), project(11, 404)},
	}

	snapshot, fetchError := namespace.Fetch(context.Background(), lister, zap.New(observedCore))
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, snapshot.Groups, 2)
	require.Len(testInstance, snapshot.Projects, 2)
	require.Len(testInstance, snapshot.Forest.Roots, 1)
	require.Len(testInstance, snapshot.Forest.OrphanProjects, 1)

	warnings := observedLogs.FilterMessage(testOrphanProjectMessageConstant).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, int64(404), warnings[0].ContextMap()["namespace_id"])
}

func TestFetchPropagatesListingFailures(testInstance *testing.T) {
	listingFailure := errors.New(testListingFailureMessageConstant)
	testCases := []struct {
		name   string
		lister stubLister
	}{
		{name: "groups_failure", lister: stubLister{groupsError: listingFailure}},
		{name: "projects_failure", lister: stubLister{groups: []gitlab.Group{group(1, 0)}, projectsError: listingFailure}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			snapshot, fetchError := namespace.Fetch(context.Background(), testCase.lister, nil)
			require.ErrorIs(testInstance, fetchError, listingFailure)
			require.Empty(testInstance, snapshot.Forest.Roots)
		})
	}
}

func TestSnapshotLookups(testInstance *testing.T) {
	snapshot := namespace.Snapshot{
		Groups: []gitlab.Group{
			{ID: 1, Name: "migrated", FullPath: "migrated"},
			{ID: 2, Name: "core", FullPath: "migrated/core"},
			{ID: 3, Name: "migrated-archive", FullPath: "migrated-archive"},
		},
		Projects: []*gitlab.Project{
			{ID: 10, Name: "api", Namespace: gitlab.Namespace{ID: 2, FullPath: "migrated/core"}},
			{ID: 11, Name: "web", Namespace: gitlab.Namespace{ID: 1, FullPath: "migrated"}},
			{ID: 12, Name: "old", Namespace: gitlab.Namespace{ID: 3, FullPath: "migrated-archive"}},
		},
	}

	foundGroup, found := snapshot.FindGroupByName("core")
	require.True(testInstance, found)
	require.Equal(testInstance, 2, foundGroup.ID)

	_, missing := snapshot.FindGroupByName("absent")
	require.False(testInstance, missing)

	selected := snapshot.ProjectsUnder("migrated")
	require.Len(testInstance, selected, 2)
	require.Equal(testInstance, 10, selected[0].ID)
	require.Equal(testInstance, 11, selected[1].ID)

	require.Len(testInstance, snapshot.ProjectsUnder(""), 3)
}
