package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/vgtrends/internal/model"
)

const chartPage = `<html><body><table>
<tr class="chart-row"><td class="title">Alpha</td><td class="genre">Action</td><td class="sales">5.2m</td><td class="publisher">Pub A</td><td class="platform">PS2</td></tr>
<tr class="chart-row"><td class="title">Beta</td><td class="genre">RPG</td><td class="sales">n/a</td><td class="publisher">Pub B</td></tr>
<tr class="chart-row"><td class="title">Gamma</td><td class="genre">Puzzle</td><td class="sales">1,024.5m</td><td class="publisher">Pub C</td><td class="platform">GBA</td></tr>
<tr class="chart-row"><td class="title">Delta</td><td class="sales">1m</td><td class="publisher">Pub D</td></tr>
<tr class="header"><td class="title">Title</td></tr>
</table></body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChartServer(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestVGChartzFetchParsesRows(t *testing.T) {
	srv, paths := newChartServer(t, http.StatusOK, chartPage)
	p := NewVGChartz(srv.URL+"/", time.Second, quietLogger())

	records, err := p.Fetch(context.Background(), 2004, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.SalesRecord{Title: "Alpha", Genre: "Action", Sales: 5.2, Publisher: "Pub A", Year: 2004}, records[0])
	assert.InDelta(t, 1024.5, records[1].Sales, 1e-9)
	assert.Equal(t, []string{"/yearly/games/2004/Global/"}, *paths)
}

func TestVGChartzFetchPlatformFilter(t *testing.T) {
	srv, _ := newChartServer(t, http.StatusOK, chartPage)
	p := NewVGChartz(srv.URL, time.Second, quietLogger())

	records, err := p.Fetch(context.Background(), 2004, "gba")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gamma", records[0].Title)

	all, err := p.Fetch(context.Background(), 2004, "All")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVGChartzFetchBadStatus(t *testing.T) {
	srv, _ := newChartServer(t, http.StatusServiceUnavailable, "")
	p := NewVGChartz(srv.URL, time.Second, quietLogger())

	_, err := p.Fetch(context.Background(), 2004, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected chart status")
}

func TestParseSales(t *testing.T) {
	v, err := ParseSales(" 5.2m ")
	require.NoError(t, err)
	assert.InDelta(t, 5.2, v, 1e-9)

	v, err = ParseSales("0.75")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, 1e-9)

	_, err = ParseSales("")
	assert.Error(t, err)
	_, err = ParseSales("-1m")
	assert.Error(t, err)
}

func TestFallbackSubstitutesOnErrorAndEmpty(t *testing.T) {
	primary := ProviderFunc(func(_ context.Context, year int, _ string) ([]model.SalesRecord, error) {
		switch year {
		case 2000:
			return nil, errors.New("boom")
		case 2001:
			return nil, nil
		default:
			return []model.SalesRecord{{Title: "real", Genre: "Action", Sales: 1, Year: year}}, nil
		}
	})
	secondary := Static{
		2000: {{Title: "synthetic", Genre: "RPG", Sales: 2, Year: 2000}},
		2001: {{Title: "synthetic", Genre: "RPG", Sales: 2, Year: 2001}},
	}
	f := &Fallback{Primary: primary, Secondary: secondary, Logger: quietLogger()}

	got, err := Collect(context.Background(), f, []int{2000, 2001, 2002}, "", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "synthetic", got[2000][0].Title)
	assert.Equal(t, "synthetic", got[2001][0].Title)
	assert.Equal(t, "real", got[2002][0].Title)
}

func TestFallbackPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := ProviderFunc(func(context.Context, int, string) ([]model.SalesRecord, error) {
		cancel()
		return nil, errors.New("aborted")
	})
	f := &Fallback{Primary: primary, Secondary: Static{}, Logger: quietLogger()}
	_, err := f.Fetch(ctx, 2000, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectStopsOnProviderError(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, year int, _ string) ([]model.SalesRecord, error) {
		return nil, fmt.Errorf("no data for %d", year)
	})
	_, err := Collect(context.Background(), p, []int{2000}, "", quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to collect sales data for 2000")
}

func TestThrottledWaitsOnLimiter(t *testing.T) {
	calls := 0
	p := &Throttled{
		Provider: ProviderFunc(func(context.Context, int, string) ([]model.SalesRecord, error) {
			calls++
			return nil, nil
		}),
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	}
	_, err := p.Fetch(context.Background(), 2000, "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Fetch(ctx, 2001, "")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
