package workers

import (
	"context"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/storage"
)

// Publisher uploads each finished artifact and records its URL. Upload
// failures leave the local file in place and are only logged.
type Publisher struct {
	runner podcast.JobRunner
	store  storage.Storage
}

func NewPublisher(runner podcast.JobRunner, store storage.Storage) *Publisher {
	return &Publisher{runner: runner, store: store}
}

func (p *Publisher) Generate(ctx context.Context, job podcast.Job, opts ...podcast.RunOption) (*podcast.Artifact, error) {
	art, err := p.runner.Generate(ctx, job, opts...)
	if err != nil || art == nil || art.Path == "" || p.store == nil {
		return art, err
	}
	url, uerr := storage.UploadFile(ctx, p.store, storage.ArtifactKey(art.JobID, art.Path), art.Path)
	if uerr != nil {
		podcast.Logger(ctx).Warn("artifact upload failed", "path", art.Path, "error", uerr)
		return art, nil
	}
	art.URL = url
	return art, nil
}
