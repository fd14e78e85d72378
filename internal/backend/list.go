package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

func listCall[T any](ctx context.Context, u *UserClient, op, path string) ([]T, error) {
	var raw json.RawMessage
	if err := u.call(ctx, op, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return out, nil
}
