package internal

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"global-chat/domain"
	"global-chat/repositories"

	"github.com/samber/lo"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key    string
	Type   string
	Detail string
}

// ItemSource lists the items of an origin storage.
type ItemSource interface {
	Keys() (map[string]string, error)
}

type RowMapper func(key, val string) InspectRow

type PageData struct {
	Prefix string
	Items  []InspectRow
	Error  string
}

// InspectRows maps every item of source whose key starts with prefix, in key order.
func InspectRows(source ItemSource, prefix string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	items, err := source.Keys()
	if err != nil {
		return nil, err
	}
	keys := lo.Filter(lo.Keys(items), func(k string, _ int) bool { return strings.HasPrefix(k, prefix) })
	sort.Strings(keys)
	return lo.Map(keys, func(k string, _ int) InspectRow { return mapper(k, items[k]) }), nil
}

// StartDebugServer serves a read-only page of the origin storage on addr.
// It stops when ctx is canceled.
func StartDebugServer(ctx context.Context, log *slog.Logger, addr string, source ItemSource, mapper RowMapper) *http.Server {
	server := &http.Server{Addr: addr, Handler: DebugHandler(source, mapper)}
	go func() {
		log.Info("Storage inspector available", "url", "http://"+addr+"/inspect")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Storage inspector stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	return server
}

func DebugHandler(source ItemSource, mapper RowMapper) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Prefix: r.URL.Query().Get("prefix")}
		rows, err := InspectRows(source, data.Prefix, mapper)
		if err != nil {
			data.Error = err.Error()
		}
		data.Items = rows

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
	return mux
}

// DefaultMapper describes the items the chat keeps. Secrets are never shown.
func DefaultMapper(key, val string) InspectRow {
	row := InspectRow{Key: key, Type: "RAW", Detail: "Size: " + strconv.Itoa(len(val)) + " bytes"}

	switch key {
	case repositories.UsersKey:
		row.Type = "CREDENTIALS"
		var users map[string]string
		if err := json.Unmarshal([]byte(val), &users); err != nil {
			row.Detail = "Error: malformed table"
			return row
		}
		names := lo.Keys(users)
		sort.Strings(names)
		row.Detail = strconv.Itoa(len(names)) + " account(s): " + strings.Join(names, ", ")
	case repositories.IdentityKey:
		row.Type = "IDENTITY"
		var identity domain.Identity
		if err := json.Unmarshal([]byte(val), &identity); err != nil {
			row.Detail = "Error: malformed identity"
			return row
		}
		row.Detail = identity.Username
	}
	return row
}
