package api

import (
	"errors"
	"net/http"

	"github.com/thisisjab/myn/fault"
)

func (s *server) returnOnError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}

	s.handleError(w, r, err)
	return true
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var f fault.Fault
	if errors.As(err, &f) {
		switch f.Code() {
		case fault.BadInputCode:
			if md, ok := f.Metadata().(fault.FieldErrorsMetadata); ok {
				// This is a 422 error since it's related to specific field
				s.writeError(w, r, http.StatusUnprocessableEntity, apiResponse{
					Success: false,
					Message: f.Message(),
					Metadata: map[string]any{
						"fields": md,
					},
				})
			} else {
				s.writeError(w, r, http.StatusBadRequest, apiResponse{
					Success:  false,
					Message:  f.Message(),
					Metadata: map[string]any{"context": f.Metadata()},
				})
			}

		case fault.ConfigurationCode:
			res := apiResponse{Success: false, Message: f.Message()}
			if md, ok := f.Metadata().(fault.FieldErrorsMetadata); ok {
				res.Metadata = map[string]any{"fields": md}
			}
			s.writeError(w, r, http.StatusBadRequest, res)

		case fault.LexicalCode, fault.SyntaxCode:
			res := apiResponse{Success: false, Message: f.Message()}
			if d, ok := f.Diagnostic(); ok {
				res.Metadata = map[string]any{"diagnostic": d}
			}
			s.writeError(w, r, http.StatusUnprocessableEntity, res)

		case fault.NotFoundCode:
			m := f.Message()
			if m == "" {
				m = "Requested resource not found."
			}

			res := apiResponse{Success: false, Message: m}

			if f.Metadata() != nil {
				res.Metadata = map[string]any{"context": f.Metadata()}
			}

			s.writeError(w, r, http.StatusNotFound, res)

		default:
			s.internalServerError(w, r, f)
		}

		return
	}

	s.internalServerError(w, r, err)
}

func (s *server) logError(r *http.Request, err error) {
	s.logger.Error("internal server error", "method", r.Method, "path", r.RequestURI, "remote-addr", r.RemoteAddr, "error", err)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, response apiResponse) {
	s.writeJson(w, status, response, nil) //nolint:errcheck
}

func (s *server) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.writeError(w, r, http.StatusInternalServerError, apiResponse{Success: false, Message: "Internal server error"})
}

func (s *server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.handleError(w, r, fault.New(fault.NotFoundCode, "").WithMetadata(map[string]string{"path": r.URL.Path}))
}
