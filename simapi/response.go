// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simapi

// Result is the outcome every response carries.
type Result struct {
	Success     bool
	Description string
}

// Response is the reply to any request kind: every response schema
// holds only a Result in field 1.
type Response struct {
	Result Result
}

// Succeeded builds a successful response.
func Succeeded(description string) Response {
	return Response{Result: Result{Success: true, Description: description}}
}

// Failed builds a failed response.
func Failed(description string) Response {
	return Response{Result: Result{Success: false, Description: description}}
}

// NotImplemented is the failure returned for unsupported kinds.
func NotImplemented(kind Kind) Response {
	return Failed(kind.Operation() + " not implemented")
}

func (r Response) Marshal() []byte {
	var body []byte
	body = appendBool(body, 1, r.Result.Success)
	body = appendString(body, 2, r.Result.Description)
	return appendMessage(nil, 1, body)
}

func (r *Response) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number != 1 {
			return nil
		}
		return mergeNested(f, &r.Result, func(dst *Result, body []byte) error {
			return walkFields(body, func(f field) error {
				switch f.number {
				case 1:
					return setBool(f, &dst.Success)
				case 2:
					return setString(f, &dst.Description)
				}
				return nil
			})
		})
	})
}

// DecodeResponse decodes a response of any kind.
func DecodeResponse(data []byte) (Response, error) {
	var response Response
	err := response.Unmarshal(data)
	return response, err
}
