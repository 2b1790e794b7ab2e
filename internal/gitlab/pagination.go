package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	orderByParameterConstant        = "order_by"
	orderByIDValueConstant          = "id"
	sortParameterConstant           = "sort"
	sortAscendingValueConstant      = "asc"
	perPageParameterConstant        = "per_page"
	idAfterParameterConstant        = "id_after"
	pageFetchedMessageConstant      = "Fetched listing page"
	listingCompletedMessageConstant = "Fetched complete listing"
	logFieldResourceConstant        = "resource"
	logFieldPageConstant            = "page"
	logFieldCursorConstant          = "cursor"
	logFieldRecordCountConstant     = "record_count"
	logFieldPageCountConstant       = "page_count"
	logFieldInstanceConstant        = "instance"
)

// ListGroups returns every group visible to the configured identity.
func (client *Client) ListGroups(executionContext context.Context) ([]Group, error) {
	return fetchAll(executionContext, client, groupsResourceConstant, func(raw json.RawMessage) (Group, int, error) {
		group, decodeError := DecodeGroup(raw)
		return group, group.ID, decodeError
	})
}

// ListProjects returns every project visible to the configured identity.
func (client *Client) ListProjects(executionContext context.Context) ([]*Project, error) {
	return fetchAll(executionContext, client, projectsResourceConstant, func(raw json.RawMessage) (*Project, int, error) {
		project, decodeError := DecodeProject(raw)
		if decodeError != nil {
			return nil, 0, decodeError
		}
		return project, project.ID, nil
	})
}

// fetchAll walks id-ordered pages using the id_after cursor until a short page arrives.
func fetchAll[Record any](executionContext context.Context, client *Client, resource string, decode func(json.RawMessage) (Record, int, error)) ([]Record, error) {
	var records []Record
	cursor := 0
	pageNumber := 1

	for {
		pageRecords, pageError := client.fetchPage(executionContext, resource, pageNumber, cursor)
		if pageError != nil {
			return nil, pageError
		}

		highestIdentifier := cursor
		for _, rawRecord := range pageRecords {
			record, identifier, decodeError := decode(rawRecord)
			if decodeError != nil {
				return nil, IncompleteResultError{Resource: resource, Page: pageNumber, Cursor: cursor, Cause: decodeError}
			}
			records = append(records, record)
			if identifier > highestIdentifier {
				highestIdentifier = identifier
			}
		}

		client.logger.Debug(
			pageFetchedMessageConstant,
			zap.String(logFieldInstanceConstant, client.instance.BaseURL),
			zap.String(logFieldResourceConstant, resource),
			zap.Int(logFieldPageConstant, pageNumber),
			zap.Int(logFieldCursorConstant, cursor),
			zap.Int(logFieldRecordCountConstant, len(pageRecords)),
		)

		if len(pageRecords) < client.pageSize {
			break
		}

		if highestIdentifier <= cursor {
			return nil, IncompleteResultError{Resource: resource, Page: pageNumber, Cursor: cursor, Cause: fmt.Errorf(cursorStalledMessageTemplateConstant, cursor)}
		}

		cursor = highestIdentifier
		pageNumber++
	}

	client.logger.Info(
		listingCompletedMessageConstant,
		zap.String(logFieldInstanceConstant, client.instance.BaseURL),
		zap.String(logFieldResourceConstant, resource),
		zap.Int(logFieldRecordCountConstant, len(records)),
		zap.Int(logFieldPageCountConstant, pageNumber),
	)

	return records, nil
}

func (client *Client) fetchPage(executionContext context.Context, resource string, pageNumber int, cursor int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set(orderByParameterConstant, orderByIDValueConstant)
	query.Set(sortParameterConstant, sortAscendingValueConstant)
	query.Set(perPageParameterConstant, strconv.Itoa(client.pageSize))
	if cursor > 0 {
		query.Set(idAfterParameterConstant, strconv.Itoa(cursor))
	}

	request, requestError := client.newRequest(executionContext, http.MethodGet, resource, query, nil)
	if requestError != nil {
		return nil, requestError
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		if errors.Is(responseError, context.Canceled) || errors.Is(responseError, context.DeadlineExceeded) {
			return nil, responseError
		}
		if response == nil {
			return nil, IncompleteResultError{Resource: resource, Page: pageNumber, Cursor: cursor, Cause: responseError}
		}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, IncompleteResultError{Resource: resource, Page: pageNumber, Cursor: cursor, StatusCode: response.StatusCode, Body: readBody(response)}
	}

	var pageRecords []json.RawMessage
	if decodeError := json.NewDecoder(response.Body).Decode(&pageRecords); decodeError != nil {
		return nil, IncompleteResultError{Resource: resource, Page: pageNumber, Cursor: cursor, Cause: ResponseDecodingError{Resource: resource, Cause: decodeError}}
	}

	return pageRecords, nil
}
