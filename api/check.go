package api

import (
	"net/http"

	"github.com/thisisjab/myn/entity"
	"github.com/thisisjab/myn/lang/token"
)

type checkRequest struct {
	Name     string            `json:"name"`
	Source   string            `json:"source"`
	Keywords map[string]string `json:"keywords"`
}

// checkHandler checks a single source buffer. Keyword overrides in the request are laid over the
// server's own overrides for this request only; a request key wins over the server's.
func (s *server) checkHandler(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if s.returnOnError(w, r, s.readJson(w, r, &req)) {
		return
	}

	if req.Name == "" {
		req.Name = "request.myn"
	}

	table := s.engine.Table().Clone()
	if len(req.Keywords) > 0 {
		overrides := table.Overrides()
		for k, v := range req.Keywords {
			overrides[k] = v
		}

		if s.returnOnError(w, r, table.Rebuild(overrides)) {
			return
		}
	}

	res := s.engine.CheckWithTable(entity.SourceUnit{Name: req.Name, Content: req.Source}, table)

	if err := s.engine.Store(r.Context(), res); err != nil {
		s.logger.Warn("failed to store check result", "source", res.Source, "error", err)
	}

	if !res.Valid {
		s.writeJson(w, http.StatusUnprocessableEntity, apiResponse{ //nolint:errcheck
			Success: false,
			Message: "Source is not valid.",
			Data:    map[string]any{"result": res},
		}, nil)
		return
	}

	s.writeJson(w, http.StatusOK, apiResponse{ //nolint:errcheck
		Success: true,
		Data:    map[string]any{"result": res},
	}, nil)
}

// keywordsHandler lists the spelling reserved for every keyword. Keywords left without a
// spelling by the configuration are omitted.
func (s *server) keywordsHandler(w http.ResponseWriter, r *http.Request) {
	table := s.engine.Table()

	spellings := make(map[string]string)
	for _, kw := range token.Keywords() {
		if spelling, ok := table.SpellingOf(kw); ok {
			spellings[kw.String()] = spelling
		}
	}

	s.writeJson(w, http.StatusOK, apiResponse{ //nolint:errcheck
		Success: true,
		Data:    map[string]any{"keywords": spellings},
	}, nil)
}
