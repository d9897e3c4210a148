// Package netx fetches remote material references over HTTP.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/prolens/internal/common"
)

// Download fetches url and returns its body and Content-Type. Bodies larger
// than limit bytes fail with common.ErrPayloadTooLarge; transport failures
// and non-2xx answers wrap common.ErrRemoteUnreachable.
func Download(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("%w: download failed: %s; body: %s", common.ErrRemoteUnreachable, resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	if int64(len(body)) > limit {
		return nil, "", common.CheckSize(int64(len(body)), limit)
	}

	return body, resp.Header.Get("Content-Type"), nil
}
