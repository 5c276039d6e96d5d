package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type APIResponse interface {
	Print() error
	Err() error
}

var _ APIResponse = &TypedAPIResponse[struct{}]{}

type TypedAPIResponse[TBody any] struct {
	StatusCode  int   `json:"statusCode"`
	Body        TBody `json:"body"`
	Error       error `json:"error"`
	contentType string
}

func NewTypedAPIResponse[TBody any](body TBody) func(resp *http.Response, err error) *TypedAPIResponse[TBody] {
	return func(resp *http.Response, err error) *TypedAPIResponse[TBody] {
		apiRes := TypedAPIResponse[TBody]{
			Error: err,
		}
		if resp == nil {
			return &apiRes
		}
		defer resp.Body.Close()

		apiRes.StatusCode = resp.StatusCode
		apiRes.contentType = strings.Split(resp.Header.Get("Content-Type"), ";")[0]

		out, err := io.ReadAll(resp.Body)
		if err != nil {
			apiRes.Error = fmt.Errorf("failed to parse body: %s", err.Error())
			return &apiRes
		}

		switch apiRes.contentType {
		case "application/json":
			if err := json.Unmarshal(out, &body); err != nil {
				apiRes.Error = errors.Wrapf(err, "failed to parse body as JSON")
				return &apiRes
			}
		case "text/plain":
			apiRes.Error = errors.New(strings.TrimSpace(string(out)))
			return &apiRes
		default:
			apiRes.Error = fmt.Errorf("unknown content type %s", apiRes.contentType)
			return &apiRes
		}

		apiRes.Body = body

		return &apiRes
	}
}

func (resp *TypedAPIResponse[TBody]) Err() error {
	return resp.Error
}

func (resp *TypedAPIResponse[TBody]) Print() error {
	if resp.Error != nil {
		fmt.Println(resp.Error.Error())
		return nil
	}

	out, err := PrettyJSON(resp.Body)
	if err != nil {
		return err
	}

	_, err = os.Stdout.WriteString(out + "\n")
	return err
}
