package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ButyrinIA/social/internal/config"
	"github.com/ButyrinIA/social/internal/graph"
	"github.com/ButyrinIA/social/internal/server"
	"github.com/ButyrinIA/social/internal/storage"
	"github.com/ButyrinIA/social/internal/storage/memory"
	"github.com/ButyrinIA/social/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	storageType := flag.String("storage", "memory", "тип хранилища: memory или postgres")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	var store storage.Storage
	switch *storageType {
	case "postgres":
		log.Println("Инициализация хранилища PostgreSQL")
		store, err = postgres.New(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Не удалось инициализировать PostgreSQL: %v", err)
		}
	case "memory":
		log.Println("Инициализация хранилища Memory")
		store = memory.New()
	default:
		log.Fatalf("Неизвестный тип хранилища: %s", *storageType)
	}
	defer store.Close()

	var socialGraph graph.Graph
	if cfg.Graph.BaseURL != "" {
		log.Printf("Сервис графа: %s", cfg.Graph.BaseURL)
		socialGraph = graph.NewClient(cfg.Graph.BaseURL, time.Duration(cfg.Graph.CacheTTLSeconds)*time.Second)
	} else {
		log.Println("Сервис графа не настроен, используется статический граф")
		socialGraph = graph.NewStatic()
	}

	srv := server.New(cfg, store, socialGraph)
	log.Println("Запуск сервера")
	if err := srv.Run(); err != nil {
		log.Fatalf("Не удалось запустить сервер: %v", err)
	}
}
