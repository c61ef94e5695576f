package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/altera-edu/school-platform/services/student/internal/models"
)

const Index = "students"

// Indexer mirrors the student directory into Elasticsearch. A nil client is
// a valid configuration: every method becomes a no-op and Search reports
// itself unavailable so the caller can fall back to SQL.
type Indexer struct {
	ES *elasticsearch.Client
}

func (i *Indexer) Enabled() bool { return i != nil && i.ES != nil }

type doc struct {
	ID              string `json:"id"`
	AdmissionNumber string `json:"admission_number"`
	Surname         string `json:"surname"`
	FirstName       string `json:"first_name"`
	MiddleNames     string `json:"middle_names"`
	ClassAdmittedTo string `json:"class_admitted_to"`
}

func toDoc(s *models.Student) doc {
	return doc{
		ID:              s.ID.String(),
		AdmissionNumber: s.AdmissionNumber,
		Surname:         s.Surname,
		FirstName:       s.FirstName,
		MiddleNames:     s.MiddleNames,
		ClassAdmittedTo: s.ClassAdmittedTo,
	}
}

func (i *Indexer) IndexStudent(ctx context.Context, s *models.Student) error {
	if !i.Enabled() {
		return nil
	}
	data, err := json.Marshal(toDoc(s))
	if err != nil {
		return err
	}
	res, err := i.ES.Index(
		Index,
		bytes.NewReader(data),
		i.ES.Index.WithDocumentID(s.ID.String()),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index student: %s", res.Status())
	}
	return nil
}

func (i *Indexer) RemoveStudent(ctx context.Context, id uuid.UUID) error {
	if !i.Enabled() {
		return nil
	}
	res, err := i.ES.Delete(Index, id.String(), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove student: %s", res.Status())
	}
	return nil
}

// Search queries name and admission-number fields with fuzzy matching and
// returns the matching student ids in rank order.
func (i *Indexer) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"surname^2", "first_name^2", "middle_names", "admission_number"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(Index),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source doc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(strings.TrimSpace(hit.Source.ID))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}
