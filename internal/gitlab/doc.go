// Package gitlab talks to the GitLab REST API (v4) for glmigrate.
//
// It defines the Group, Project, and Namespace records the migration operates
// on, retrieves complete group and project listings through keyset pagination
// ordered by id, and creates groups and projects on a destination instance.
// HTTP traffic goes through go-retryablehttp so transient failures are retried
// before a page is reported as incomplete.
package gitlab
