package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/repository/memory"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/authoring"
	"legal-annotation-be/pkg/geometry"
	"legal-annotation-be/pkg/mirror"
	"legal-annotation-be/pkg/store"

	"github.com/google/uuid"
)

// Delivery pushes messages to connected users. Implemented by the
// websocket hub.
type Delivery interface {
	SendToUser(userID uuid.UUID, msg dto.WSOutbound)
	BroadcastToDocument(documentID uuid.UUID, except uuid.UUID, msg dto.WSOutbound)
}

type IAuthoringService interface {
	Open(ctx context.Context, userId uuid.UUID, req *dto.CreateAuthoringSessionRequest) (*dto.AuthoringSessionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.AuthoringSessionResponse, error)
	SelectTool(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SelectToolRequest) (*authoring.Snapshot, error)
	DeselectTool(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*authoring.Snapshot, error)
	UpdateViewport(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateViewportRequest) (*authoring.Snapshot, error)
	SelectAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SelectAnnotationRequest) (*authoring.Snapshot, error)
	Pointer(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.PointerEventRequest) (*dto.PointerEventResponse, error)
	UpdateAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error)
	DeleteAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, annotationId uuid.UUID) error
	Close(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error

	// ApplyRemote refreshes one annotation in every live session on the
	// document, as seen by each session's user.
	ApplyRemote(ctx context.Context, documentId uuid.UUID, annotationId uuid.UUID, removed bool)

	HandleMessage(ctx context.Context, userId uuid.UUID, documentId uuid.UUID, msg dto.WSMessage) (*dto.WSOutbound, error)
}

type authoringService struct {
	uowFactory        unitofwork.RepositoryFactory
	annotationService IAnnotationService
	sessions          *memory.SessionRepository
	delivery          Delivery
	logger            logger.ILogger
	minShapeSize      float64
}

func NewAuthoringService(
	uowFactory unitofwork.RepositoryFactory,
	annotationService IAnnotationService,
	sessions *memory.SessionRepository,
	delivery Delivery,
	log logger.ILogger,
	minShapeSize float64,
) IAuthoringService {
	return &authoringService{
		uowFactory:        uowFactory,
		annotationService: annotationService,
		sessions:          sessions,
		delivery:          delivery,
		logger:            log,
		minShapeSize:      minShapeSize,
	}
}

func (s *authoringService) Open(ctx context.Context, userId uuid.UUID, req *dto.CreateAuthoringSessionRequest) (*dto.AuthoringSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, _, err := loadDocument(ctx, uow, req.DocumentId, userId)
	if err != nil {
		return nil, err
	}
	if document.PageCount > 0 && req.PageNumber > document.PageCount {
		return nil, dto.NewValidationError("page_number", "document has %d pages", document.PageCount)
	}

	machine, err := authoring.NewMachine(req.PageNumber, withPageSize(req.Viewport, document), authoring.WithMinShapeSize(s.minShapeSize))
	if err != nil {
		return nil, invalidInput("viewport", err)
	}

	session := &store.Session{
		ID:         uuid.New(),
		UserID:     userId,
		DocumentID: document.Id,
		CreatedAt:  time.Now(),
		Machine:    machine,
	}
	session.Mirror = mirror.New(document.Id, nil,
		&annotationBackend{annotations: s.annotationService, userId: userId},
		s.notifier(userId),
		s.logger,
	)
	if err := session.Mirror.Load(ctx); err != nil {
		session.Close()
		return nil, err
	}
	s.sessions.Save(session)

	s.logger.Info("AUTHORING", "Session opened", map[string]interface{}{
		"session_id":  session.ID.String(),
		"document_id": document.Id.String(),
		"user_id":     userId.String(),
		"annotations": session.Mirror.Len(),
	})
	return s.sessionResponse(session), nil
}

func (s *authoringService) Show(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.AuthoringSessionResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(session), nil
}

func (s *authoringService) SelectTool(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SelectToolRequest) (*authoring.Snapshot, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	tool := authoring.Tool{
		Type:        entity.AnnotationType(req.Type),
		Color:       entity.AnnotationColor(req.Color),
		StrokeWidth: req.StrokeWidth,
		StampKind:   req.StampKind,
		FontSize:    req.FontSize,
	}
	if err := session.Machine.SelectTool(tool); err != nil {
		return nil, invalidInput("tool", err)
	}
	return snapshotOf(session), nil
}

func (s *authoringService) DeselectTool(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*authoring.Snapshot, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	session.Machine.Deselect()
	return snapshotOf(session), nil
}

func (s *authoringService) UpdateViewport(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateViewportRequest) (*authoring.Snapshot, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	viewport := req.Viewport
	if req.PageNumber != nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		document, _, err := loadDocument(ctx, uow, session.DocumentID, userId)
		if err != nil {
			return nil, err
		}
		if document.PageCount > 0 && *req.PageNumber > document.PageCount {
			return nil, dto.NewValidationError("page_number", "document has %d pages", document.PageCount)
		}
		viewport = withPageSize(viewport, document)
	} else if viewport.PageWidth == 0 && viewport.PageHeight == 0 {
		current := session.Machine.Snapshot().Viewport
		viewport.PageWidth, viewport.PageHeight = current.PageWidth, current.PageHeight
	}

	if err := session.Machine.SetViewport(viewport); err != nil {
		return nil, invalidInput("viewport", err)
	}
	if req.PageNumber != nil {
		if err := session.Machine.SetPage(*req.PageNumber); err != nil {
			return nil, invalidInput("page_number", err)
		}
	}
	return snapshotOf(session), nil
}

func (s *authoringService) SelectAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SelectAnnotationRequest) (*authoring.Snapshot, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	if req.AnnotationId == nil {
		session.Machine.ClearSelection()
		return snapshotOf(session), nil
	}
	if _, ok := session.Mirror.Get(*req.AnnotationId); !ok {
		return nil, dto.NotFound("annotation")
	}
	session.Machine.Select(*req.AnnotationId)
	return snapshotOf(session), nil
}

// Pointer feeds one pointer event to the session's machine. A pointer-up
// that completes a shape stores it through the session's mirror.
func (s *authoringService) Pointer(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.PointerEventRequest) (*dto.PointerEventResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	p := geometry.Point{X: req.X, Y: req.Y}
	res := &dto.PointerEventResponse{}

	switch req.Phase {
	case dto.PointerDown:
		if err := session.Machine.PointerDown(p); err != nil {
			s.logger.Debug("AUTHORING", "Pointer down ignored", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	case dto.PointerMove:
		session.Machine.PointerMove(p)
	case dto.PointerCancel:
		session.Machine.Cancel()
	case dto.PointerUp:
		draft, err := session.Machine.PointerUp(p)
		if err != nil {
			return nil, err
		}
		if draft != nil {
			saved, err := session.Mirror.Create(ctx, annotationFromDraft(draft, session, req))
			if err != nil {
				return nil, err
			}
			res.Annotation = toAnnotationResponse(saved, access{owner: true})
		}
	default:
		return nil, dto.NewValidationError("phase", "unknown pointer phase %q", req.Phase)
	}

	res.State = session.Machine.Snapshot()
	return res, nil
}

func (s *authoringService) UpdateAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	saved, err := session.Mirror.Update(ctx, req.Id, func(a *entity.Annotation) error {
		if req.PageNumber != nil {
			a.PageNumber = *req.PageNumber
		}
		if req.Color != nil {
			a.Color = entity.AnnotationColor(*req.Color)
		}
		if req.Position != nil {
			a.Position = entity.Position{X: req.Position.X, Y: req.Position.Y, Width: req.Position.Width, Height: req.Position.Height}
		}
		if req.Content != nil {
			a.Content = req.Content
		}
		if req.Properties != nil {
			a.Properties = req.Properties
		}
		return nil
	})
	if errors.Is(err, mirror.ErrNotFound) {
		return nil, dto.NotFound("annotation")
	}
	if err != nil {
		return nil, err
	}
	return toAnnotationResponse(saved, access{owner: saved.UserId == userId}), nil
}

func (s *authoringService) DeleteAnnotation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, annotationId uuid.UUID) error {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}

	err = session.Mirror.Delete(ctx, annotationId)
	if errors.Is(err, mirror.ErrNotFound) {
		return dto.NotFound("annotation")
	}
	if err != nil {
		return err
	}
	if selected := session.Machine.Selected(); selected != nil && *selected == annotationId {
		session.Machine.ClearSelection()
	}
	return nil
}

// Close ends the session. In-flight saves are aborted and rolled back.
func (s *authoringService) Close(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	if _, err := s.session(userId, sessionId); err != nil {
		return err
	}
	s.sessions.Delete(sessionId)
	s.logger.Info("AUTHORING", "Session closed", map[string]interface{}{
		"session_id": sessionId.String(),
		"user_id":    userId.String(),
	})
	return nil
}

func (s *authoringService) ApplyRemote(ctx context.Context, documentId uuid.UUID, annotationId uuid.UUID, removed bool) {
	for _, session := range s.sessions.ForDocument(documentId) {
		if removed {
			session.Mirror.Apply(annotationId, nil)
			continue
		}
		res, err := s.annotationService.Show(ctx, session.UserID, annotationId)
		if errors.Is(err, dto.ErrNotFound) {
			session.Mirror.Apply(annotationId, nil)
			continue
		}
		if err != nil {
			s.logger.Warn("AUTHORING", "Failed to refresh annotation", map[string]interface{}{
				"session_id":    session.ID.String(),
				"annotation_id": annotationId.String(),
				"error":         err.Error(),
			})
			continue
		}
		session.Mirror.Apply(annotationId, AnnotationFromResponse(res))
	}
}

// HandleMessage serves the authoring messages sent over a websocket
// connection. Every message other than session.open carries a session_id.
func (s *authoringService) HandleMessage(ctx context.Context, userId uuid.UUID, documentId uuid.UUID, msg dto.WSMessage) (*dto.WSOutbound, error) {
	if msg.Type == dto.WSTypeOpenSession {
		var req dto.CreateAuthoringSessionRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		if req.DocumentId == uuid.Nil {
			req.DocumentId = documentId
		}
		if documentId != uuid.Nil && req.DocumentId != documentId {
			return nil, dto.NewValidationError("document_id", "connection is bound to another document")
		}
		if err := serverutils.ValidateRequest(&req); err != nil {
			return nil, err
		}
		res, err := s.Open(ctx, userId, &req)
		if err != nil {
			return nil, err
		}
		return &dto.WSOutbound{Type: dto.WSTypeSession, Payload: res}, nil
	}

	var env dto.SessionEnvelope
	if err := decodePayload(msg, &env); err != nil {
		return nil, err
	}
	if env.SessionId == uuid.Nil {
		return nil, dto.NewValidationError("session_id", "is required")
	}
	if documentId != uuid.Nil {
		session, err := s.session(userId, env.SessionId)
		if err != nil {
			return nil, err
		}
		if session.DocumentID != documentId {
			return nil, dto.NewValidationError("session_id", "session belongs to another document")
		}
	}

	var (
		payload interface{}
		err     error
	)
	switch msg.Type {
	case dto.WSTypeSelectTool:
		var req dto.SelectToolRequest
		if err := decodeAndValidate(msg, &req); err != nil {
			return nil, err
		}
		payload, err = s.SelectTool(ctx, userId, env.SessionId, &req)
	case dto.WSTypeDeselectTool:
		payload, err = s.DeselectTool(ctx, userId, env.SessionId)
	case dto.WSTypeViewport:
		var req dto.UpdateViewportRequest
		if err := decodeAndValidate(msg, &req); err != nil {
			return nil, err
		}
		payload, err = s.UpdateViewport(ctx, userId, env.SessionId, &req)
	case dto.WSTypeSelect:
		var req dto.SelectAnnotationRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		payload, err = s.SelectAnnotation(ctx, userId, env.SessionId, &req)
	case dto.WSTypePointer:
		var req dto.PointerEventRequest
		if err := decodeAndValidate(msg, &req); err != nil {
			return nil, err
		}
		payload, err = s.Pointer(ctx, userId, env.SessionId, &req)
	case dto.WSTypeUpdate:
		var req dto.UpdateAnnotationRequest
		if err := decodeAndValidate(msg, &req); err != nil {
			return nil, err
		}
		if req.Id == uuid.Nil {
			return nil, dto.NewValidationError("annotation_id", "is required")
		}
		if _, err := s.UpdateAnnotation(ctx, userId, env.SessionId, &req); err != nil {
			return nil, err
		}
		return nil, nil
	case dto.WSTypeDelete:
		var req dto.AnnotationTarget
		if err := decodeAndValidate(msg, &req); err != nil {
			return nil, err
		}
		return nil, s.DeleteAnnotation(ctx, userId, env.SessionId, req.AnnotationId)
	case dto.WSTypeCloseSession:
		return nil, s.Close(ctx, userId, env.SessionId)
	default:
		return nil, dto.NewValidationError("type", "unknown message type %q", msg.Type)
	}
	if err != nil {
		return nil, err
	}
	return &dto.WSOutbound{Type: dto.WSTypeState, Payload: payload}, nil
}

func (s *authoringService) session(userId uuid.UUID, sessionId uuid.UUID) (*store.Session, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok || session.UserID != userId {
		return nil, dto.NotFound("authoring session")
	}
	return session, nil
}

func (s *authoringService) notifier(userId uuid.UUID) mirror.Notifier {
	return mirror.NotifierFunc(func(t mirror.Toast) {
		if s.delivery == nil {
			return
		}
		s.delivery.SendToUser(userId, dto.WSOutbound{
			Type: dto.WSTypeToast,
			Payload: dto.ToastPayload{
				Level:   string(t.Level),
				Title:   t.Title,
				Message: t.Message,
			},
		})
	})
}

func (s *authoringService) sessionResponse(session *store.Session) *dto.AuthoringSessionResponse {
	state := session.Machine.Snapshot()
	onPage := session.Mirror.Filter(func(a *entity.Annotation) bool {
		return a.PageNumber == state.PageNumber
	})
	annotations := make([]dto.AnnotationResponse, 0, len(onPage))
	for _, a := range onPage {
		annotations = append(annotations, *toAnnotationResponse(a, access{owner: a.UserId == session.UserID}))
	}
	return &dto.AuthoringSessionResponse{
		Id:          session.ID,
		DocumentId:  session.DocumentID,
		State:       state,
		Annotations: annotations,
	}
}

func snapshotOf(session *store.Session) *authoring.Snapshot {
	snapshot := session.Machine.Snapshot()
	return &snapshot
}

func annotationFromDraft(draft *authoring.Draft, session *store.Session, req *dto.PointerEventRequest) *entity.Annotation {
	return &entity.Annotation{
		Id:         uuid.New(),
		DocumentId: session.DocumentID,
		UserId:     session.UserID,
		PageNumber: draft.PageNumber,
		Type:       draft.Type,
		Color:      draft.Color,
		Position: entity.Position{
			X:      draft.Position.X,
			Y:      draft.Position.Y,
			Width:  draft.Position.Width,
			Height: draft.Position.Height,
		},
		Content:      req.Content,
		SelectedText: req.SelectedText,
		Properties:   draft.Properties,
		CreatedAt:    time.Now(),
	}
}

// withPageSize fills in the page dimensions and scale the viewer left out.
func withPageSize(viewport geometry.Viewport, document *entity.Document) geometry.Viewport {
	if viewport.Scale == 0 {
		viewport.Scale = 1
	}
	if viewport.PageWidth == 0 && viewport.PageHeight == 0 {
		viewport.PageWidth = document.PageWidth
		viewport.PageHeight = document.PageHeight
	}
	return viewport
}

func invalidInput(field string, err error) error {
	return dto.NewValidationError(field, "%s", err.Error())
}

func decodePayload(msg dto.WSMessage, v interface{}) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return dto.NewValidationError("payload", "malformed %s payload", msg.Type)
	}
	return nil
}

func decodeAndValidate(msg dto.WSMessage, v interface{}) error {
	if err := decodePayload(msg, v); err != nil {
		return err
	}
	return serverutils.ValidateRequest(v)
}
