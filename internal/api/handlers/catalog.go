package handlers

import (
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/voices"
)

type CatalogHandler struct {
	catalog *voices.Catalog
}

func NewCatalogHandler(c *voices.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type voicesResponse struct {
	*voices.Listing
	Recommended []string `json:"recommended,omitempty"`
}

// Voices serves the catalog. ?scene= adds that scene's recommendations and
// ?refresh=true bypasses the cache.
func (h *CatalogHandler) Voices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		listing *voices.Listing
		err     error
	)
	if refresh, _ := strconv.ParseBool(q.Get("refresh")); refresh {
		listing, err = h.catalog.Refresh(r.Context())
	} else {
		listing, err = h.catalog.List(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := voicesResponse{Listing: listing}
	if s := q.Get("scene"); s != "" {
		scene, err := podcast.ParseScene(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.Recommended = voices.Recommended(scene, len(scene.DefaultVoices()))
	}
	writeJSON(w, http.StatusOK, resp)
}

type sceneInfo struct {
	Scene         podcast.Scene      `json:"scene"`
	Description   string             `json:"description"`
	DefaultVoices []string           `json:"default_voices"`
	SpeakerNames  []string           `json:"speaker_names"`
	MusicStyle    podcast.MusicStyle `json:"music_style"`
}

func (h *CatalogHandler) Scenes(w http.ResponseWriter, r *http.Request) {
	out := make([]sceneInfo, 0, len(podcast.Scenes()))
	for _, s := range podcast.Scenes() {
		out = append(out, sceneInfo{
			Scene:         s,
			Description:   s.Description(),
			DefaultVoices: s.DefaultVoices(),
			SpeakerNames:  s.SpeakerNames(),
			MusicStyle:    s.MusicStyle(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": out})
}

func (h *CatalogHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	minutes, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || minutes < podcast.MinDuration || minutes > podcast.MaxDuration {
		writeError(w, http.StatusBadRequest, "duration must be an integer between 1 and 30")
		return
	}
	d := podcast.EstimateGenerationTime(minutes)
	writeJSON(w, http.StatusOK, map[string]any{
		"duration_minutes":  minutes,
		"estimated_seconds": int(d.Seconds()),
		"estimated":         podcast.FormatEstimate(d),
	})
}
