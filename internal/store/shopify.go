package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bylanglois/views-api/internal/catalog"
)

const shopifyAPIVersion = "2024-07"

// Shopify is a catalog.Client over the Shopify Admin GraphQL API. Records map
// to metaobjects: the API exposes type-scoped cursor pagination and batch
// mutation only through aliased sub-mutations in a single document, which is
// exactly the collaborator shape the flush path expects.
type Shopify struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// NewShopify creates a client for the given shop. The timeout bounds every
// round trip; a timeout reads as a transport failure to callers.
func NewShopify(shopDomain, token string, timeout time.Duration) *Shopify {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, shopifyAPIVersion)

	return NewShopifyEndpoint(endpoint, token, timeout)
}

// NewShopifyEndpoint creates a client against an explicit endpoint URL.
func NewShopifyEndpoint(endpoint, token string, timeout time.Duration) *Shopify {
	return &Shopify{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		token:      token,
	}
}

const listRecordsQuery = `
query ListRecords($type: String!, $first: Int!, $after: String) {
  metaobjects(type: $type, first: $first, after: $after) {
    edges {
      node {
        id
        fields { key value }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

type metaobjectNode struct {
	ID     string `json:"id"`
	Fields []struct {
		Key   string  `json:"key"`
		Value *string `json:"value"`
	} `json:"fields"`
}

func (n *metaobjectNode) toRecord() catalog.Record {
	record := catalog.Record{
		ID:     n.ID,
		Fields: make(map[string]string, len(n.Fields)),
	}

	for _, f := range n.Fields {
		// Null field values come back from the API and must not be sent
		// back as null; normalize to "" on the way in.
		value := ""
		if f.Value != nil {
			value = *f.Value
		}

		if _, ok := record.Fields[f.Key]; !ok {
			record.Fields[f.Key] = value
		}
	}

	return record
}

func (s *Shopify) ListRecords(ctx context.Context, recordType string, pageSize int, cursor string) (*catalog.Page, error) {
	variables := map[string]any{
		"type":  recordType,
		"first": pageSize,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	data, err := s.post(ctx, listRecordsQuery, variables)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Metaobjects struct {
			Edges []struct {
				Node metaobjectNode `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"metaobjects"`
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	page := &catalog.Page{
		Records:     make([]catalog.Record, 0, len(payload.Metaobjects.Edges)),
		HasNextPage: payload.Metaobjects.PageInfo.HasNextPage,
		EndCursor:   payload.Metaobjects.PageInfo.EndCursor,
	}

	for _, edge := range payload.Metaobjects.Edges {
		page.Records = append(page.Records, edge.Node.toRecord())
	}

	return page, nil
}

type fieldInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func fieldInputs(fields map[string]string) []fieldInput {
	inputs := make([]fieldInput, 0, len(fields))
	for k, v := range fields {
		inputs = append(inputs, fieldInput{Key: k, Value: v})
	}

	return inputs
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type updatePayload struct {
	Metaobject *struct {
		ID string `json:"id"`
	} `json:"metaobject"`
	UserErrors []userError `json:"userErrors"`
}

// UpdateRecords builds one mutation document with an aliased metaobjectUpdate
// per entry, so the whole batch costs a single round trip and each
// sub-mutation fails independently.
func (s *Shopify) UpdateRecords(ctx context.Context, updates []catalog.Update) ([]catalog.UpdateResult, error) {
	var (
		doc       strings.Builder
		variables = make(map[string]any, len(updates)*2)
	)

	doc.WriteString("mutation UpdateRecords(")

	for i := range updates {
		if i > 0 {
			doc.WriteString(", ")
		}

		fmt.Fprintf(&doc, "$id%d: ID!, $fields%d: [MetaobjectFieldInput!]!", i, i)
	}

	doc.WriteString(") {\n")

	for i, u := range updates {
		fmt.Fprintf(&doc,
			"  u%d: metaobjectUpdate(id: $id%d, metaobject: { fields: $fields%d }) { metaobject { id } userErrors { field message } }\n",
			i, i, i)

		variables[fmt.Sprintf("id%d", i)] = u.ID
		variables[fmt.Sprintf("fields%d", i)] = fieldInputs(u.Fields)
	}

	doc.WriteString("}")

	data, err := s.post(ctx, doc.String(), variables)
	if err != nil {
		return nil, err
	}

	var aliased map[string]updatePayload
	if err := json.Unmarshal(data, &aliased); err != nil {
		return nil, fmt.Errorf("decode mutation result: %w", err)
	}

	results := make([]catalog.UpdateResult, 0, len(updates))

	for i, u := range updates {
		payload, ok := aliased[fmt.Sprintf("u%d", i)]
		if !ok {
			results = append(results, catalog.UpdateResult{
				ID:  u.ID,
				Err: fmt.Errorf("missing result for %s", u.ID),
			})

			continue
		}

		results = append(results, catalog.UpdateResult{ID: u.ID, Err: payload.err()})
	}

	return results, nil
}

func (p *updatePayload) err() error {
	if len(p.UserErrors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(p.UserErrors))
	for _, ue := range p.UserErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
	}

	return fmt.Errorf("user errors: %s", strings.Join(messages, "; "))
}

const createRecordMutation = `
mutation CreateRecord($type: String!, $fields: [MetaobjectFieldInput!]!) {
  metaobjectCreate(metaobject: { type: $type, fields: $fields }) {
    metaobject {
      id
      fields { key value }
    }
    userErrors { field message }
  }
}`

func (s *Shopify) CreateRecord(ctx context.Context, recordType string, fields map[string]string) (*catalog.Record, error) {
	data, err := s.post(ctx, createRecordMutation, map[string]any{
		"type":   recordType,
		"fields": fieldInputs(fields),
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		MetaobjectCreate struct {
			Metaobject *metaobjectNode `json:"metaobject"`
			UserErrors []userError     `json:"userErrors"`
		} `json:"metaobjectCreate"`
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode create result: %w", err)
	}

	if len(payload.MetaobjectCreate.UserErrors) == 0 && payload.MetaobjectCreate.Metaobject != nil {
		record := payload.MetaobjectCreate.Metaobject.toRecord()

		return &record, nil
	}

	wrapped := updatePayload{UserErrors: payload.MetaobjectCreate.UserErrors}

	if err := wrapped.err(); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return nil, fmt.Errorf("create record: empty response")
}

// post executes one GraphQL request and returns the raw data payload.
// GraphQL-level errors count as transport failures: the document is fixed at
// compile time, so an errors array means the catalog rejected the whole call.
func (s *Shopify) post(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("catalog request: %s", envelope.Errors[0].Message)
	}

	return envelope.Data, nil
}

var (
	_ catalog.Client  = (*Shopify)(nil)
	_ catalog.Creator = (*Shopify)(nil)
)
