package api

import (
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/problems"
	"github.com/bitbattle/bitbattle/pkg/services"
)

// ProblemView is the public problem shape: everything except the hidden
// test cases.
type ProblemView struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Difficulty       problems.Difficulty  `json:"difficulty"`
	Examples         []problems.TestCase  `json:"examples"`
	StarterCode      map[string]string    `json:"starter_code"`
	TimeLimitMinutes *int                 `json:"time_limit_minutes"`
	Tags             []string             `json:"tags"`
}

func problemView(p *problems.Problem) ProblemView {
	return ProblemView{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Difficulty:       p.Difficulty,
		Examples:         p.Examples,
		StarterCode:      p.StarterCode,
		TimeLimitMinutes: p.TimeLimitMinutes,
		Tags:             p.Tags,
	}
}

// ProblemSummary is the list shape: just enough to render a catalog row.
// Clients fetch the full view per problem.
type ProblemSummary struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Difficulty problems.Difficulty `json:"difficulty"`
	Tags       []string            `json:"tags"`
}

// listProblemsHandler handles GET /problems.
func (s *Server) listProblemsHandler(c *echo.Context) error {
	ids := s.registry.IDs()
	summaries := make([]ProblemSummary, 0, len(ids))
	for _, id := range ids {
		if p := s.registry.Get(id); p != nil {
			summaries = append(summaries, ProblemSummary{
				ID:         p.ID,
				Title:      p.Title,
				Difficulty: p.Difficulty,
				Tags:       p.Tags,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"problems": summaries,
		"total":    len(summaries),
	})
}

// getProblemHandler handles GET /problems/:id.
func (s *Server) getProblemHandler(c *echo.Context) error {
	id, err := services.ValidateProblemID(c.Param("id"))
	if err != nil {
		return err
	}
	if p := s.registry.Get(id); p != nil {
		return c.JSON(http.StatusOK, problemView(p))
	}
	return fmt.Errorf("problem %s: %w", id, services.ErrNotFound)
}
