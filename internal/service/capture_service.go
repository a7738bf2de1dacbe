package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/repository"
)

// SignedLinkTTL is the validity of the read link issued after an upload.
const SignedLinkTTL = 60 * time.Second

// MaxPhotoBytes bounds an uploaded photo.
const MaxPhotoBytes = 10 << 20

// CaptureStep names one stage of the capture flow.
type CaptureStep string

const (
	StepRead   CaptureStep = "read"
	StepPath   CaptureStep = "path"
	StepUpload CaptureStep = "upload"
	StepSign   CaptureStep = "sign"
	StepAttach CaptureStep = "attach"
)

// StepError reports the stage at which a capture stopped.
type StepError struct {
	Step CaptureStep
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// placeholderPNG is a 1x1 transparent PNG.
var placeholderPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

// CaptureInput is one photo to store, optionally attached to an existing meal.
type CaptureInput struct {
	Photo  io.Reader
	MealID string
}

// CaptureResult describes a completed capture.
type CaptureResult struct {
	MealID      string `json:"meal_id,omitempty"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	SignedURL   string `json:"signed_url"`
}

// CaptureService runs the meal photo capture flow.
type CaptureService interface {
	Capture(ctx context.Context, sess *model.Session, in CaptureInput) (*CaptureResult, error)
	SmokeTest(ctx context.Context, sess *model.Session) (*CaptureResult, error)
	History(ctx context.Context, sess *model.Session, limit int) ([]model.CaptureLog, error)
}

type captureService struct {
	meals  repository.MealRepository
	photos repository.PhotoStore
	logs   repository.CaptureLogRepository
	log    *zap.Logger
	newID  func() string
}

// NewCaptureService creates a new capture service.
func NewCaptureService(meals repository.MealRepository, photos repository.PhotoStore, logs repository.CaptureLogRepository, log *zap.Logger) CaptureService {
	return &captureService{
		meals:  meals,
		photos: photos,
		logs:   logs,
		log:    log,
		newID:  uuid.NewString,
	}
}

type captureState struct {
	sess   *model.Session
	in     CaptureInput
	data   []byte
	mime   *mimetype.MIME
	result CaptureResult
}

type captureStage struct {
	name CaptureStep
	run  func(ctx context.Context, st *captureState) error
}

func (s *captureService) stages() []captureStage {
	return []captureStage{
		{StepRead, s.read},
		{StepPath, s.path},
		{StepUpload, s.upload},
		{StepSign, s.sign},
		{StepAttach, s.attach},
	}
}

// Capture stores the photo and issues a signed link for it. Stages run in
// order; the first failure stops the flow and nothing already done is undone.
func (s *captureService) Capture(ctx context.Context, sess *model.Session, in CaptureInput) (*CaptureResult, error) {
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	st := &captureState{sess: sess, in: in}
	st.result.MealID = in.MealID

	for _, stage := range s.stages() {
		if err := stage.run(ctx, st); err != nil {
			stepErr := &StepError{Step: stage.name, Err: err}
			s.record(ctx, st, stage.name, stepErr)
			return nil, stepErr
		}
	}
	s.record(ctx, st, StepAttach, nil)
	return &st.result, nil
}

// SmokeTest inserts a placeholder meal and captures a 1x1 PNG for it.
func (s *captureService) SmokeTest(ctx context.Context, sess *model.Session) (*CaptureResult, error) {
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	label := "smoke test"
	mealID, err := s.meals.Create(ctx, sess.AccessToken, &model.NewMeal{
		UserID: sess.User.ID,
		Label:  &label,
		Source: model.MealSourceSmokeTest,
	})
	if err != nil {
		return nil, fmt.Errorf("insert placeholder meal: %w", err)
	}
	return s.Capture(ctx, sess, CaptureInput{Photo: bytes.NewReader(placeholderPNG), MealID: mealID})
}

// History returns the caller's recent capture attempts.
func (s *captureService) History(ctx context.Context, sess *model.Session, limit int) ([]model.CaptureLog, error) {
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.logs.ListByUser(ctx, sess.User.ID, limit)
}

func (s *captureService) read(_ context.Context, st *captureState) error {
	if st.in.Photo == nil {
		return fmt.Errorf("no photo provided")
	}
	data, err := io.ReadAll(io.LimitReader(st.in.Photo, MaxPhotoBytes+1))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("photo is empty")
	}
	if len(data) > MaxPhotoBytes {
		return fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w (%s)", apperrors.ErrUnsupportedMedia, mt.String())
	}
	st.data = data
	st.mime = mt
	st.result.ContentType = mt.String()
	return nil
}

func (s *captureService) path(_ context.Context, st *captureState) error {
	ext := strings.TrimPrefix(st.mime.Extension(), ".")
	if ext == "" {
		return fmt.Errorf("no file extension for %s", st.mime.String())
	}
	st.result.Path = fmt.Sprintf("%s/%s.%s", st.sess.User.ID, s.newID(), ext)
	return nil
}

func (s *captureService) upload(ctx context.Context, st *captureState) error {
	return s.photos.Upload(ctx, st.sess.AccessToken, st.result.Path, st.data, st.result.ContentType)
}

func (s *captureService) sign(ctx context.Context, st *captureState) error {
	link, err := s.photos.SignedURL(ctx, st.sess.AccessToken, st.result.Path, SignedLinkTTL)
	if err != nil {
		return err
	}
	st.result.SignedURL = link
	return nil
}

func (s *captureService) attach(ctx context.Context, st *captureState) error {
	if st.in.MealID == "" {
		return nil
	}
	return s.meals.AttachPhoto(ctx, st.sess.AccessToken, st.in.MealID, st.result.Path)
}

func (s *captureService) record(ctx context.Context, st *captureState, step CaptureStep, err error) {
	entry := &model.CaptureLog{
		UserID:    st.sess.User.ID,
		MealID:    st.in.MealID,
		PhotoPath: st.result.Path,
		Step:      string(step),
		Status:    model.CaptureStatusSucceeded,
	}
	if err != nil {
		entry.Status = model.CaptureStatusFailed
		entry.ErrorMessage = err.Error()
	}
	if lerr := s.logs.Create(ctx, entry); lerr != nil {
		s.log.Warn("capture log write failed", zap.Error(lerr))
	}
}
