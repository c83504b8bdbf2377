package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/types"
)

// ErrBusy is returned when a pipeline already has a request in flight.
var ErrBusy = errors.New("a request is already in progress")

// ErrUnknownTab is returned by SelectTab for tabs that do not exist.
var ErrUnknownTab = errors.New("unknown tab")

// Analyzer runs and records one CV analysis.
type Analyzer interface {
	Submit(ctx context.Context, req *types.AnalysisRequest) (*types.HistoryItem, error)
}

// HeadshotAnalyzer analyzes one photo.
type HeadshotAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*types.HeadshotAnalysis, error)
}

// HistoryStore is the subset of the history store the controller reads and edits.
type HistoryStore interface {
	LoadAll(ctx context.Context) []types.HistoryItem
	Get(ctx context.Context, id string) (types.HistoryItem, error)
	Remove(ctx context.Context, id string) error
}

// Normalizer turns a selected file into a CV payload.
type Normalizer interface {
	Normalize(ctx context.Context, f *ingestion.File) (types.CVPayload, error)
}

// Options configures a Controller.
type Options struct {
	Analyzer   Analyzer
	Headshots  HeadshotAnalyzer
	History    HistoryStore
	Normalizer Normalizer
	Market     types.Market
	Logger     *slog.Logger
}

// Controller serializes every state change behind a mutex. The two AI
// pipelines run outside the lock and admit one request each.
type Controller struct {
	mu    sync.Mutex
	state State

	analyzer   Analyzer
	headshots  HeadshotAnalyzer
	history    HistoryStore
	normalizer Normalizer
	market     types.Market
	logger     *slog.Logger
}

// New creates a controller in the idle phase.
func New(opts Options) *Controller {
	if opts.Normalizer == nil {
		opts.Normalizer = ingestion.NewNormalizer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if !opts.Market.Valid() {
		opts.Market = types.DefaultMarket
	}
	c := &Controller{
		analyzer:   opts.Analyzer,
		headshots:  opts.Headshots,
		history:    opts.History,
		normalizer: opts.Normalizer,
		market:     opts.Market,
		logger:     opts.Logger,
	}
	c.state = c.initialState()
	return c
}

func (c *Controller) initialState() State {
	return State{
		Phase:     PhaseIdle,
		Form:      Form{Market: c.market},
		ActiveTab: TabOverview,
		History:   []types.HistoryItem{},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Refresh reloads history from the store.
func (c *Controller) Refresh(ctx context.Context) {
	if c.history == nil {
		return
	}
	items := c.history.LoadAll(ctx)
	c.mu.Lock()
	c.state.History = items
	c.mu.Unlock()
}

// SetText replaces the pasted CV text and clears any selected file.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.CVText = text
	c.clearFileLocked()
	c.state.FormError = ""
}

// SetFile selects a CV file and clears any pasted text. The file is
// normalized immediately; an input failure is kept as FormError and blocks
// submission until the file is cleared or replaced.
func (c *Controller) SetFile(ctx context.Context, f *ingestion.File) error {
	if f == nil {
		c.ClearFile()
		return nil
	}
	payload, err := c.normalizer.Normalize(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyFileLocked(f, payload, err)
}

// applyFileLocked stores f and the outcome of normalizing it.
func (c *Controller) applyFileLocked(f *ingestion.File, payload types.CVPayload, err error) error {
	c.state.Form.CVText = ""
	c.state.Form.file = f
	c.state.Form.FileName = f.Name
	c.state.Form.FileSize = f.Size()
	c.state.Form.payload = nil

	if err != nil {
		failure := analysis.Classify(err)
		if failure.Kind != analysis.KindInputValidation {
			c.clearFileLocked()
			return failure
		}
		c.state.FormError = failure.Message
		return failure
	}
	c.state.Form.payload = &payload
	c.state.FormError = ""
	return nil
}

// ClearFile removes the selected file.
func (c *Controller) ClearFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearFileLocked()
	c.state.FormError = ""
}

func (c *Controller) clearFileLocked() {
	c.state.Form.file = nil
	c.state.Form.payload = nil
	c.state.Form.FileName = ""
	c.state.Form.FileSize = 0
}

// SetJobDescription replaces the job description.
func (c *Controller) SetJobDescription(jd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.JobDescription = jd
}

// SetMarket selects the target market. Empty input selects the default.
func (c *Controller) SetMarket(market string) error {
	m, err := types.ParseMarket(market)
	if err != nil {
		failure := marketFailure(err)
		c.mu.Lock()
		c.state.FormError = failure.Message
		c.mu.Unlock()
		return failure
	}
	c.mu.Lock()
	c.state.Form.Market = m
	c.mu.Unlock()
	return nil
}

func marketFailure(err error) *analysis.Failure {
	return analysis.InputFailure("Please choose a supported target market.", err)
}

// FormInput is a complete form submitted in one step, as the API does.
type FormInput struct {
	CVText         string
	File           *ingestion.File
	JobDescription string
	Market         string
}

// SubmitForm replaces the form with in and submits it. The form is applied
// and the pipeline claimed under one lock, so concurrent callers never see
// each other's input.
func (c *Controller) SubmitForm(ctx context.Context, in FormInput) (*types.HistoryItem, error) {
	var (
		payload types.CVPayload
		normErr error
	)
	if in.File != nil {
		payload, normErr = c.normalizer.Normalize(ctx, in.File)
	}
	market, marketErr := types.ParseMarket(in.Market)

	c.mu.Lock()
	if c.state.Phase == PhaseAnalyzing {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if in.File != nil {
		if err := c.applyFileLocked(in.File, payload, normErr); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	} else {
		c.state.Form.CVText = in.CVText
		c.clearFileLocked()
		c.state.FormError = ""
	}
	c.state.Form.JobDescription = in.JobDescription
	if marketErr != nil {
		failure := marketFailure(marketErr)
		c.state.FormError = failure.Message
		c.mu.Unlock()
		return nil, failure
	}
	c.state.Form.Market = market

	req, previous, err := c.beginLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.run(ctx, req, previous)
}

// Submit analyzes the current form. Input failures only set FormError; AI
// failures move the phase to error.
func (c *Controller) Submit(ctx context.Context) (*types.HistoryItem, error) {
	c.mu.Lock()
	req, previous, err := c.beginLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.run(ctx, req, previous)
}

// beginLocked builds the request from the form and marks the pipeline as
// analyzing. It returns the phase to restore on an input failure.
func (c *Controller) beginLocked() (*types.AnalysisRequest, Phase, error) {
	if c.state.Phase == PhaseAnalyzing {
		return nil, "", ErrBusy
	}
	if c.state.Form.file != nil && c.state.Form.payload == nil {
		msg := c.state.FormError
		if msg == "" {
			msg = ingestion.ErrUnsupportedType.Error()
		}
		return nil, "", analysis.InputFailure(msg, nil)
	}

	payload := types.TextPayload(c.state.Form.CVText)
	if c.state.Form.payload != nil {
		payload = *c.state.Form.payload
	}
	req := &types.AnalysisRequest{
		CV:             payload,
		JobDescription: c.state.Form.JobDescription,
		Market:         c.state.Form.Market,
	}
	previous := c.state.Phase
	c.state.Phase = PhaseAnalyzing
	c.state.FormError = ""
	return req, previous, nil
}

// run performs the claimed analysis and records its outcome.
func (c *Controller) run(ctx context.Context, req *types.AnalysisRequest, previous Phase) (*types.HistoryItem, error) {
	item, err := c.analyze(ctx, req)

	var refreshed []types.HistoryItem
	if err == nil && c.history != nil {
		refreshed = c.history.LoadAll(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		failure := analysis.Classify(err)
		if failure.Kind == analysis.KindInputValidation {
			c.state.Phase = previous
			c.state.FormError = failure.Message
		} else {
			c.state.Phase = PhaseError
			c.state.Error = failure
		}
		return nil, failure
	}

	if refreshed == nil {
		refreshed = prepend(c.state.History, *item)
	}
	c.state.History = refreshed
	c.showLocked(*item)
	return item, nil
}

func (c *Controller) analyze(ctx context.Context, req *types.AnalysisRequest) (*types.HistoryItem, error) {
	if c.analyzer == nil {
		return nil, errors.New("analysis pipeline is not configured")
	}
	return c.analyzer.Submit(ctx, req)
}

func prepend(items []types.HistoryItem, item types.HistoryItem) []types.HistoryItem {
	out := make([]types.HistoryItem, 0, len(items)+1)
	out = append(out, item)
	for _, existing := range items {
		if existing.ID != item.ID {
			out = append(out, existing)
		}
	}
	if len(out) > history.Limit {
		out = out[:history.Limit]
	}
	return out
}

func (c *Controller) showLocked(item types.HistoryItem) {
	result := item.Result
	c.state.Current = &result
	c.state.SelectedID = item.ID
	c.state.Phase = PhaseResults
	c.state.Error = nil
	c.state.ActiveTab = TabOverview
}

// SelectHistory shows a stored analysis without contacting the model.
func (c *Controller) SelectHistory(ctx context.Context, id string) (types.HistoryItem, error) {
	item, err := c.lookup(ctx, id)
	if err != nil {
		return types.HistoryItem{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhaseAnalyzing {
		return types.HistoryItem{}, ErrBusy
	}
	c.showLocked(item)
	return item, nil
}

func (c *Controller) lookup(ctx context.Context, id string) (types.HistoryItem, error) {
	if c.history != nil {
		return c.history.Get(ctx, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.state.History {
		if item.ID == id {
			return item, nil
		}
	}
	return types.HistoryItem{}, history.ErrNotFound
}

// DeleteHistory removes an entry. Deleting an unknown id is not an error.
// The displayed result stays on screen.
func (c *Controller) DeleteHistory(ctx context.Context, id string) error {
	var remaining []types.HistoryItem
	if c.history != nil {
		if err := c.history.Remove(ctx, id); err != nil {
			return err
		}
		remaining = c.history.LoadAll(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if remaining == nil {
		remaining = make([]types.HistoryItem, 0, len(c.state.History))
		for _, item := range c.state.History {
			if item.ID != id {
				remaining = append(remaining, item)
			}
		}
	}
	c.state.History = remaining
	if c.state.SelectedID == id {
		c.state.SelectedID = ""
	}
	return nil
}

// SelectTab switches the dashboard tab.
func (c *Controller) SelectTab(tab Tab) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ActiveTab = tab
	return nil
}

// Reset returns to an empty form in the idle phase. History and an in-flight
// headshot are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.initialState()
	next.History = c.state.History
	if c.state.Phase == PhaseAnalyzing {
		next.Phase = PhaseAnalyzing
	}
	if c.state.Headshot.InProgress {
		next.Headshot.InProgress = true
	}
	c.state = next
}

// AnalyzeHeadshot runs the photo pipeline. It does not touch the main
// pipeline's phase.
func (c *Controller) AnalyzeHeadshot(ctx context.Context, image []byte, mimeType string) (*types.HeadshotAnalysis, error) {
	c.mu.Lock()
	if c.state.Headshot.InProgress {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state.Headshot.InProgress = true
	c.state.Headshot.Error = nil
	c.mu.Unlock()

	var (
		result *types.HeadshotAnalysis
		err    error
	)
	if c.headshots == nil {
		err = errors.New("headshot pipeline is not configured")
	} else {
		result, err = c.headshots.Analyze(ctx, image, strings.TrimSpace(mimeType))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Headshot.InProgress = false
	if err != nil {
		failure := analysis.Classify(err)
		c.state.Headshot.Error = failure
		c.state.Headshot.Result = nil
		return nil, failure
	}
	c.state.Headshot.Result = result
	return result, nil
}
