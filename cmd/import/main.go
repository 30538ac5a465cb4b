// Command import loads a directory of markdown posts into the posts table. Every file becomes
// one post of the given author; front matter fields fill the matching post fields.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/logger"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/publish"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/util"
	"github.com/debemdeboas/the-press/internal/util/compression"
)

func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	ownerID := flag.String("owner-id", "", "Owner user ID for the posts")
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if *path == "" || *ownerID == "" {
		log.Fatal("Both --path and --owner-id flags are required")
	}

	godotenv.Load()
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	db.SetLogger(l)
	repository.SetLogger(l)
	publish.SetLogger(l)

	database, err := db.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		l.Fatal().Err(err).Msg("Unsupported database")
	}
	if err := database.InitDb(); err != nil {
		l.Fatal().Err(err).Msgf(config.ErrInitializeDatabaseFmt, err)
	}
	defer database.Close()

	compressor, err := compression.ForName(cfg.Database.Compression)
	if err != nil {
		l.Fatal().Err(err).Msg("Unsupported compression")
	}
	publisher := publish.NewController(repository.NewDBPostRepository(database, compressor), cfg.Publishing.RefreshPublishedAt)

	files, err := os.ReadDir(*path)
	if err != nil {
		l.Fatal().Err(err).Str("path", *path).Msg("Error reading directory")
	}

	imported := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		post, err := importFile(context.Background(), publisher, filepath.Join(*path, file.Name()), model.UserID(*ownerID))
		if err != nil {
			l.Error().Err(err).Str("file", file.Name()).Msg("Error importing file")
			continue
		}
		imported++
		l.Info().Str("file", file.Name()).Str("post_id", string(post.ID)).Str("status", string(post.Status)).Msg("Post imported")
	}
	l.Info().Int("imported", imported).Msg("Import finished")
}

// importFile converts one markdown file and saves it through the publish controller, so
// imported posts pass the same checks as edited ones.
func importFile(ctx context.Context, publisher *publish.Controller, filePath string, owner model.UserID) (model.Post, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return model.Post{}, err
	}

	doc, target := toPost(filepath.Base(filePath), content)
	return publisher.Save(ctx, doc, target, owner)
}

// toPost builds the post of a markdown document. Without front matter the file name is the
// title and the post is a draft.
func toPost(name string, content []byte) (model.Post, model.Status) {
	// A missing or malformed block leaves frontMatter nil and the whole file as body.
	frontMatter, _ := util.GetFrontMatter(content)

	html, _ := render.RenderMarkdown(frontMatter.Body(content))

	doc := model.Post{
		Title:   strings.TrimSuffix(name, ".md"),
		Content: string(html),
	}
	target := model.StatusDraft

	if frontMatter != nil {
		if frontMatter.Title != "" {
			doc.Title = frontMatter.Title
		}
		doc.Slug = frontMatter.Slug
		doc.Summary = frontMatter.Summary
		doc.FeaturedImage = frontMatter.FeaturedImage
		doc.SEOTitle = frontMatter.SEOTitle
		doc.SEODescription = frontMatter.SEODescription
		if status, err := model.ParseStatus(frontMatter.Status); err == nil {
			target = status
		}
	}
	return doc, target
}
