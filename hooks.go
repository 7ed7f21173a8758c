package vcr

import "fmt"

// A RequestHook transforms a request before it is written to a cassette.
// It receives a private copy and may modify it freely.
type RequestHook func(Request) (Request, error)

// A ResponseHook transforms a response before it is written to a cassette.
// It receives a private copy and may modify it freely.
type ResponseHook func(Response) (Response, error)

func applyRequestHooks(hooks []RequestHook, req Request) (out Request, err error) {
	defer recoverHook("request", &err)
	out = req.Clone()
	for _, hook := range hooks {
		if out, err = hook(out); err != nil {
			return Request{}, &HookError{Stage: "request", Err: err}
		}
	}
	return out, nil
}

func applyResponseHooks(hooks []ResponseHook, res Response) (out Response, err error) {
	defer recoverHook("response", &err)
	out = res.Clone()
	for _, hook := range hooks {
		if out, err = hook(out); err != nil {
			return Response{}, &HookError{Stage: "response", Err: err}
		}
	}
	return out, nil
}

func recoverHook(stage string, err *error) {
	if r := recover(); r != nil {
		*err = &HookError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}
