package core

import (
	"encoding/json"
	"fmt"
)

// Classify interprets a reply body.
//
// The body must be a JSON object with a "status" of "ok" or "fail". On ok
// the "uid" is extracted and the remaining keys become Data; on fail UID
// and Data stay empty. The API's envelope form, where status and uid sit
// under "response" and the payload under "data", is accepted too. Any
// other body yields StatusError with a *ProtocolError. httpStatus is only
// recorded; the body alone decides the outcome.
func Classify(body []byte, httpStatus int) *Response {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		return protocolFailure(DetailUnparseable, httpStatus, body, err)
	}

	header, data := doc, doc
	if _, flat := doc["status"]; !flat {
		if envelope, ok := doc["response"].(map[string]any); ok {
			header = envelope
			data = envelopeData(doc)
		}
	}

	raw, present := header["status"]
	if !present {
		return protocolFailure(DetailMissingStatus, httpStatus, body, nil)
	}
	status, _ := raw.(string)

	switch Status(status) {
	case StatusOK:
		uid, _ := header["uid"].(string)
		return &Response{
			Status:     StatusOK,
			UID:        uid,
			Data:       withoutHeader(data),
			HTTPStatus: httpStatus,
			Body:       body,
		}
	case StatusFail:
		return &Response{
			Status:     StatusFail,
			HTTPStatus: httpStatus,
			Body:       body,
		}
	default:
		return protocolFailure(fmt.Sprintf("%s %v", DetailUnexpectedStatus, raw), httpStatus, body, nil)
	}
}

func envelopeData(doc map[string]any) map[string]any {
	if inner, ok := doc["data"].(map[string]any); ok {
		return inner
	}
	rest := make(map[string]any, len(doc))
	for k, v := range doc {
		if k != "response" {
			rest[k] = v
		}
	}
	return rest
}

// withoutHeader copies m without its status and uid keys. Nested values,
// such as a "message" object, are passed through untouched.
func withoutHeader(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "status" || k == "uid" {
			continue
		}
		out[k] = v
	}
	return out
}

func protocolFailure(detail string, httpStatus int, body []byte, cause error) *Response {
	return NewErrorResponse(&ProtocolError{
		Detail:     detail,
		HTTPStatus: httpStatus,
		Err:        cause,
	}, httpStatus, body)
}
