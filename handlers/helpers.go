package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ctfboard/scoreboard/services"
)

// actionResult is the wire shape every registration/login action responds
// with. On success Redirect names the target surface ("game"/"admin"); on
// failure it carries the error category ("registration"/"login"/"index").
type actionResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Token    string `json:"token,omitempty"`
}

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func badRequestResponse(w http.ResponseWriter, logger *slog.Logger, err error) {
	result := actionResult{Status: "error", Message: err.Error(), Redirect: "index"}
	if writeErr := writeJSON(w, http.StatusBadRequest, result); writeErr != nil {
		logger.Error("failed to write error response", slog.Any("error", writeErr))
	}
}

// mapServiceError folds a service-layer failure into the coarse public
// result. The mapping is explicit per sentinel; anything unrecognized is a
// generic server failure, never a detailed message.
func mapServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	var result actionResult

	switch {
	case errors.Is(err, services.ErrRegistrationDisabled):
		status = http.StatusForbidden
		result = actionResult{Status: "error", Message: "Registration failed", Redirect: "registration"}
	case errors.Is(err, services.ErrLoginFailed):
		status = http.StatusUnauthorized
		result = actionResult{Status: "error", Message: "Login failed", Redirect: "login"}
	default:
		logger.Error("internal error", slog.Any("error", err))
		status = http.StatusInternalServerError
		result = actionResult{Status: "error", Message: "Something went wrong", Redirect: "index"}
	}

	if writeErr := writeJSON(w, status, result); writeErr != nil {
		logger.Error("failed to write error response", slog.Any("error", writeErr))
	}
}
