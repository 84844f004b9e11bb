package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/model"
)

var errEmptyBody = errors.New("empty body")

// decodeBody decodes the JSON request body into dst, rejecting unknown
// fields and trailing data.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeBadBody(c *fiber.Ctx, err error) error {
	msg := "malformed JSON body"
	if errors.Is(err, errEmptyBody) {
		msg = "request body is required"
	} else if strings.HasPrefix(err.Error(), "json: unknown field") {
		msg = strings.TrimPrefix(err.Error(), "json: ")
	}
	return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", msg)
}

// queryParser collects per-field errors while reading query parameters.
type queryParser struct {
	c    *fiber.Ctx
	errs map[string]string
}

func newQueryParser(c *fiber.Ctx) *queryParser {
	return &queryParser{c: c, errs: map[string]string{}}
}

// Int returns the integer value of key, or 0 when absent.
func (p *queryParser) Int(key string) int {
	raw := p.c.Query(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs[key] = "must be an integer"
		return 0
	}
	return n
}

// Bool accepts true/false, 1/0 and yes/no in any case. Absent keys yield nil.
func (p *queryParser) Bool(key string) *bool {
	raw := strings.ToLower(strings.TrimSpace(p.c.Query(key)))
	var v bool
	switch raw {
	case "":
		return nil
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
		v = false
	default:
		p.errs[key] = "must be a boolean"
		return nil
	}
	return &v
}

func (p *queryParser) Trash() model.TrashMode {
	return model.TrashMode(p.c.Query("trashed"))
}

// Failed reports whether any parameter failed to parse.
func (p *queryParser) Failed() bool { return len(p.errs) > 0 }
