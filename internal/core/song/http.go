// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/spevnik/internal/platform/apperr"
	requestutil "github.com/taibuivan/spevnik/internal/platform/request"
	"github.com/taibuivan/spevnik/internal/platform/respond"
	"github.com/taibuivan/spevnik/pkg/convert"
	"github.com/taibuivan/spevnik/pkg/pagination"
	"github.com/taibuivan/spevnik/pkg/pointer"
	"github.com/taibuivan/spevnik/pkg/query"
)

// # HTTP Transport

// Handler exposes the song catalogue over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a song [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the song route group.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listSongs)
	router.Post("/", handler.createSong)
	router.Get("/search", handler.search)
	router.Get("/category-counts", handler.categoryCounts)
	router.Get("/stats", handler.stats)
	router.Get("/associations", handler.associations)
	router.Get("/batch", handler.batch)
	router.Post("/check-delete-password", handler.checkDeletePassword)
	router.Get("/{id}", handler.getSong)
	router.Put("/{id}", handler.updateSong)
	router.Delete("/{id}", handler.deleteSong)
	router.Post("/{id}/associate", handler.associate)

	return router
}

// # Request / Response Shapes

// songRequest is the JSON payload for create and update.
type songRequest struct {
	Title             string   `json:"title"`
	VersionName       string   `json:"version_name"`
	Author            string   `json:"author"`
	TitleOriginal     string   `json:"title_original"`
	AuthorOriginal    string   `json:"author_original"`
	AlternativeTitles []string `json:"alternative_titles"`
	Categories        []string `json:"categories"`
	Parts             []Part   `json:"parts"`
	AdminChecked      bool     `json:"admin_checked"`
	Printed           bool     `json:"printed"`

	PDFLyricsPath  string   `json:"pdf_lyrics_path"`
	PDFChordsPath  string   `json:"pdf_chords_path"`
	TexPath        string   `json:"tex_path"`
	MP3Paths       []string `json:"mp3_paths"`
	MIDIPaths      []string `json:"midi_paths"`
	SheetPDFPaths  []string `json:"sheet_pdf_paths"`
	SheetMsczPaths []string `json:"sheet_mscz_paths"`
}

// toSong maps the payload onto a domain entity.
func (payload *songRequest) toSong() *Song {
	return &Song{
		Title:             payload.Title,
		VersionName:       payload.VersionName,
		Author:            payload.Author,
		TitleOriginal:     payload.TitleOriginal,
		AuthorOriginal:    payload.AuthorOriginal,
		AlternativeTitles: payload.AlternativeTitles,
		Categories:        payload.Categories,
		Parts:             payload.Parts,
		AdminChecked:      payload.AdminChecked,
		Printed:           payload.Printed,
		PDFLyricsPath:     payload.PDFLyricsPath,
		PDFChordsPath:     payload.PDFChordsPath,
		TexPath:           payload.TexPath,
		MP3Paths:          payload.MP3Paths,
		MIDIPaths:         payload.MIDIPaths,
		SheetPDFPaths:     payload.SheetPDFPaths,
		SheetMsczPaths:    payload.SheetMsczPaths,
	}
}

// passwordRequest carries the shared delete password.
type passwordRequest struct {
	Password string `json:"password"`
}

// associateRequest names the song code to adopt.
type associateRequest struct {
	SongID string `json:"song_id"`
}

// searchResponse mirrors the legacy search API envelope.
type searchResponse struct {
	Results        []Summary     `json:"results"`
	TotalFound     int           `json:"total_found"`
	ReturnedCount  int           `json:"returned_count"`
	Offset         int           `json:"offset"`
	Limit          int           `json:"limit"`
	HasMore        bool          `json:"has_more"`
	Query          string        `json:"query"`
	FiltersApplied searchFilters `json:"filters_applied"`
}

type searchFilters struct {
	Printed    bool     `json:"printed"`
	Unchecked  bool     `json:"unchecked"`
	Categories []string `json:"categories"`
}

// batchResponse carries an explicitly ordered song set plus the codes that
// resolved to nothing.
type batchResponse struct {
	Songs   []*Song  `json:"songs"`
	Missing []string `json:"missing,omitempty"`
}

// # Handlers

// listSongs handles GET / — a catalogue page ordered by song code.
func (handler *Handler) listSongs(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	songs, total, err := handler.service.ListSongs(request.Context(), params.Limit, params.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, songs, pagination.NewMeta(params, total, len(songs)))
}

// search handles GET /search — free-text query with filter intersection.
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := filterFromRequest(request)
	filter.Categories = query.StringSlice(request.URL.Query().Get("categories"))

	results, total, err := handler.service.Search(request.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, searchResponse{
		Results:       results,
		TotalFound:    total,
		ReturnedCount: len(results),
		Offset:        params.Offset,
		Limit:         params.Limit,
		HasMore:       params.Offset+len(results) < total,
		Query:         request.URL.Query().Get("q"),
		FiltersApplied: searchFilters{
			Printed:    convert.ToBool(request.URL.Query().Get("printed")),
			Unchecked:  filter.Unchecked,
			Categories: filter.Categories,
		},
	})
}

// categoryCounts handles GET /category-counts — faceted counting under the
// active filter combination.
func (handler *Handler) categoryCounts(writer http.ResponseWriter, request *http.Request) {
	filter := filterFromRequest(request)
	active := query.StringSlice(request.URL.Query().Get("active_categories"))

	counts, err := handler.service.CategoryCounts(request.Context(), filter, active)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, counts)
}

// stats handles GET /stats — whole-catalogue statistics.
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// associations handles GET /associations — code+title pairs for the picker.
func (handler *Handler) associations(writer http.ResponseWriter, request *http.Request) {
	prefix := request.URL.Query().Get("prefix")
	excludeCode := request.URL.Query().Get("exclude_id")

	associations, err := handler.service.Associations(request.Context(), prefix, excludeCode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, associations)
}

// batch handles GET /batch?ids=A-001,B-002 — songs in request order.
func (handler *Handler) batch(writer http.ResponseWriter, request *http.Request) {
	codes := query.StringSlice(request.URL.Query().Get("ids"))
	if len(codes) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No song IDs provided"))
		return
	}

	songs, missing, err := handler.service.SongsByCodes(request.Context(), codes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, batchResponse{Songs: songs, Missing: missing})
}

// getSong handles GET /{id} — numeric ID or song code lookup.
func (handler *Handler) getSong(writer http.ResponseWriter, request *http.Request) {
	song, err := handler.service.GetSong(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, song)
}

// createSong handles POST / — create with code allocation and search-text
// computation.
func (handler *Handler) createSong(writer http.ResponseWriter, request *http.Request) {
	var payload songRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	song := payload.toSong()
	if err := handler.service.CreateSong(request.Context(), song); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, song)
}

// updateSong handles PUT /{id}.
func (handler *Handler) updateSong(writer http.ResponseWriter, request *http.Request) {
	id, err := numericID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload songRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	song, err := handler.service.UpdateSong(request.Context(), id, payload.toSong())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, song)
}

// deleteSong handles DELETE /{id} — guarded by the shared delete password.
func (handler *Handler) deleteSong(writer http.ResponseWriter, request *http.Request) {
	id, err := numericID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload passwordRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSong(request.Context(), id, payload.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// checkDeletePassword handles POST /check-delete-password — validates the
// password without deleting anything.
func (handler *Handler) checkDeletePassword(writer http.ResponseWriter, request *http.Request) {
	var payload passwordRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	valid := handler.service.CheckDeletePassword(payload.Password) == nil
	respond.OK(writer, map[string]bool{"valid": valid})
}

// associate handles POST /{id}/associate — adopt another song's code and title.
func (handler *Handler) associate(writer http.ResponseWriter, request *http.Request) {
	id, err := numericID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload associateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	song, err := handler.service.Associate(request.Context(), id, payload.SongID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, song)
}

// # Helpers

// filterFromRequest parses the shared q/printed/unchecked filter parameters.
func filterFromRequest(request *http.Request) Filter {
	filter := Filter{
		Query:     request.URL.Query().Get("q"),
		Unchecked: convert.ToBool(request.URL.Query().Get("unchecked")),
	}

	switch request.URL.Query().Get("printed") {
	case "true":
		filter.Printed = pointer.To(true)
	case "false":
		filter.Printed = pointer.To(false)
	}

	return filter
}

// numericID parses the {id} URL parameter as the internal primary key.
func numericID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(requestutil.ID(request, "id"), 10, 64)
	if err != nil {
		return 0, apperr.ValidationError("Invalid song ID")
	}
	return id, nil
}
