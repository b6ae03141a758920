package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	socialGraph := NewStatic()
	socialGraph.Follow("viewer", "alice")
	socialGraph.Follow("viewer", "bob")
	socialGraph.Follow("viewer", "alice") // повторная подписка не дублируется

	ids, err := socialGraph.Following(context.Background(), "viewer")
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	ids, err = socialGraph.Following(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Empty(t, ids, "Неизвестный пользователь ни на кого не подписан")
}

func TestClient(t *testing.T) {
	t.Run("Following", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			assert.Equal(t, "/following", r.URL.Path)
			switch r.URL.Query().Get("user") {
			case "viewer":
				json.NewEncoder(w).Encode([]string{"alice", "bob"})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Minute)

		ids, err := client.Following(context.Background(), "viewer")
		assert.NoError(t, err, "Ошибка при запросе подписок")
		assert.Equal(t, []string{"alice", "bob"}, ids)

		// Повторный запрос обслуживается кэшем.
		ids, err = client.Following(context.Background(), "viewer")
		assert.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, ids)
		assert.Equal(t, int64(1), hits.Load(), "Второй запрос не должен уходить в сервис")
	})

	t.Run("Unknown User", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Minute)

		ids, err := client.Following(context.Background(), "ghost")
		assert.NoError(t, err, "404 от сервиса графа не является ошибкой")
		assert.Empty(t, ids)
	})

	t.Run("Service Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Minute)

		_, err := client.Following(context.Background(), "viewer")
		assert.Error(t, err, "Неожиданный статус должен приводить к ошибке")
	})
}
