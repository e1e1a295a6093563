package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"serving-backend/cmd"
	"serving-backend/internal/core"
	"serving-backend/internal/history"
	"serving-backend/internal/models"
	"serving-backend/internal/serve"
	"serving-backend/internal/storage"

	"github.com/caarlos0/env/v11"
	ort "github.com/yalue/onnxruntime_go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ServerConfig struct {
	APIPort      string `env:"API_PORT" envDefault:"8001"`
	ManifestPath string `env:"MODEL_MANIFEST" envDefault:"model.yaml"`
	ModelDir     string `env:"MODEL_DIR" envDefault:"./models"`

	// Required when the manifest uses an ONNX model kind.
	OnnxRuntimeDylib string `env:"ONNX_RUNTIME_DYLIB"`

	Title       string `env:"API_TITLE"`
	Description string `env:"API_DESCRIPTION"`
	DocsURL     string `env:"DOCS_URL"`

	// Empty disables prediction history.
	HistoryDBPath string `env:"HISTORY_DB_PATH" envDefault:"predictions.db"`

	// When ArtifactBucket is set artifacts come from S3/MinIO, otherwise
	// from ArtifactDir on disk.
	ArtifactBucket    string `env:"ARTIFACT_BUCKET"`
	ArtifactDir       string `env:"ARTIFACT_DIR" envDefault:"./artifacts"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func main() {
	log.Println("Starting model server...")

	cmd.LoadEnvFile()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	manifest, err := models.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("Failed to load model manifest: %v", err)
	}

	if manifest.Artifact != "" {
		if err := fetchArtifacts(cfg, manifest); err != nil {
			log.Fatalf("Failed to fetch model artifacts: %v", err)
		}
	}

	if manifest.RequiresOnnxRuntime() {
		if cfg.OnnxRuntimeDylib == "" {
			log.Fatalf("ONNX_RUNTIME_DYLIB must be set")
		}
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeDylib)
		if err := ort.InitializeEnvironment(); err != nil {
			log.Fatalf("could not init ONNX Runtime: %v", err)
		}
		defer func() {
			if err := ort.DestroyEnvironment(); err != nil {
				log.Fatalf("error destroying onnx env: %v", err)
			}
		}()
	}

	model, err := buildModel(cfg, manifest)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	var store *history.Store
	if cfg.HistoryDBPath != "" {
		db, err := gorm.Open(sqlite.Open(cfg.HistoryDBPath), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		store, err = history.NewStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize prediction history: %v", err)
		}
	}

	api, err := serve.CreateAPI(serve.Config{
		Task:  manifest.Task,
		Model: model,
		Options: core.ProcessorOptions{
			ImageWidth:  manifest.ImageWidth,
			ImageHeight: manifest.ImageHeight,
			Normalize:   manifest.Normalize,
			Labels:      manifest.Labels,
			TopK:        manifest.TopK,
		},
		Title:       cfg.Title,
		Description: cfg.Description,
		DocsURL:     cfg.DocsURL,
		History:     store,
	}, false, "")
	if err != nil {
		log.Fatalf("Failed to create API: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: api.Router(),
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Serving %s model %q on port %s", manifest.Task, manifest.Name, cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}

func fetchArtifacts(cfg ServerConfig, manifest *models.Manifest) error {
	var provider storage.Provider
	var err error

	if cfg.ArtifactBucket != "" {
		provider, err = storage.NewS3Provider(storage.S3ProviderConfig{
			EndpointURL:     cfg.S3EndpointURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.ArtifactBucket,
		})
	} else {
		provider, err = storage.NewLocalProvider(cfg.ArtifactDir)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	return storage.DownloadPrefix(ctx, provider, manifest.Artifact, cfg.ModelDir)
}

func buildModel(cfg ServerConfig, manifest *models.Manifest) (core.Model, error) {
	modelFile := manifest.ModelFile
	if modelFile == "" {
		modelFile = "model.onnx"
	}
	tokenizerFile := manifest.TokenizerFile
	if tokenizerFile == "" {
		tokenizerFile = "tokenizer.json"
	}

	switch manifest.Kind {
	case models.KindOnnxImage:
		return models.LoadOnnxImageClassifier(filepath.Join(cfg.ModelDir, modelFile), len(manifest.Labels))
	case models.KindOnnxText:
		return models.LoadOnnxTextClassifier(
			filepath.Join(cfg.ModelDir, modelFile),
			filepath.Join(cfg.ModelDir, tokenizerFile),
			len(manifest.Labels),
		)
	case models.KindOpenAIQnA:
		return models.NewOpenAIQnA(manifest.OpenAIModel, manifest.Temperature), nil
	default:
		// Echo model, useful for smoke testing a deployment.
		return core.ModelFunc(func(ctx context.Context, input any) (any, error) {
			return input, nil
		}), nil
	}
}
