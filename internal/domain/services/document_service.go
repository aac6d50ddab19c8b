package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuflow/docuflow/internal/domain/repositories"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrTagNotFound        = errors.New("document tag not found")
	ErrRoleNotPermitted   = errors.New("role not permitted for this operation")
	ErrInvalidAssignee    = errors.New("assignee does not match the next pipeline role")
	ErrCommentConflict    = errors.New("comment could not be appended, too many concurrent edits")
	ErrEmptyComment       = errors.New("comment text is required")
	ErrDocumentTitleEmpty = errors.New("document title is required")
)

// commentRetries bounds the optimistic append loop.
const commentRetries = 3

// DocumentService owns the review pipeline: create, hand-off between
// roles, QA drafting and publishing, comments, and role-scoped listing.
type DocumentService struct {
	docRepo     repositories.DocumentRepository
	tagRepo     repositories.DocumentTagRepository
	userRepo    repositories.UserRepository
	clientRepo  repositories.ClientRepository
	historyRepo repositories.EditHistoryRepository

	usageService *UsageService
	logger       *slog.Logger
}

// NewDocumentService creates a new document service instance
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	tagRepo repositories.DocumentTagRepository,
	userRepo repositories.UserRepository,
	clientRepo repositories.ClientRepository,
	historyRepo repositories.EditHistoryRepository,
	usageService *UsageService,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:      docRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
		clientRepo:   clientRepo,
		historyRepo:  historyRepo,
		usageService: usageService,
		logger:       logger,
	}
}

// CreateDocumentParams contains parameters for document creation
type CreateDocumentParams struct {
	TagID  uuid.UUID `json:"tag_id"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	FileID string    `json:"file_id"`
}

// DocumentView is a document enriched with resolved people and the
// show-more UI flag.
type DocumentView struct {
	models.Document
	AddedBy     PersonRef  `json:"added_by"`
	RequestedBy *PersonRef `json:"requested_by,omitempty"`
	ShowMore    bool       `json:"show_more"`
}

// Create registers a new document at the first pipeline stage. The tag's
// property schema is cloned with empty values, and the upload counter of
// the actor (client) or their company is bumped best-effort.
func (s *DocumentService) Create(ctx context.Context, actor Actor, params CreateDocumentParams) (*models.Document, error) {
	if params.Title == "" {
		return nil, ErrDocumentTitleEmpty
	}

	tag, err := s.tagRepo.GetByID(ctx, params.TagID)
	if err != nil || tag.CompanyID != actor.CompanyID {
		return nil, ErrTagNotFound
	}

	properties := make(models.PropertyList, 0, len(tag.Properties))
	for _, field := range tag.Properties {
		properties = append(properties, models.Property{Key: field.Key, Value: ""})
	}

	document := &models.Document{
		ID:             uuid.New(),
		CompanyID:      actor.CompanyID,
		TagID:          tag.ID,
		Title:          params.Title,
		URL:            params.URL,
		FileID:         params.FileID,
		Properties:     properties,
		Progress:       models.ProgressIncomplete,
		ProgressNumber: models.StageCreated,
		AddedByID:      actor.ID,
		AddedByRole:    actor.Role,
		Comments:       models.CommentList{},
	}

	if err := s.docRepo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	// Best-effort side effects: a failed counter bump or history row must
	// not fail the upload.
	if err := s.usageService.RecordUpload(ctx, actor); err != nil {
		s.logger.Warn("upload counter bump failed",
			"document_id", document.ID, "error", err)
	}
	s.recordHistory(ctx, actor, document, "created")

	return document, nil
}

// Assign hands a document to the next pipeline role. Scanners, clients,
// owners and managers pass to an indexer; an indexer passes to QA and
// advances the stage. QA has nobody to pass to.
func (s *DocumentService) Assign(ctx context.Context, actor Actor, documentID, assigneeID uuid.UUID) (*models.Document, error) {
	document, err := s.getScoped(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	nextRole, ok := NextRole(actor.Role)
	if !ok {
		return nil, ErrRoleNotPermitted
	}

	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil || assignee.CompanyID != actor.CompanyID || !assignee.Role.Is(nextRole) {
		return nil, ErrInvalidAssignee
	}

	if nextRole.Is(models.RoleIndexer) {
		document.IndexerPassedID = &assigneeID
	} else {
		document.QAPassedID = &assigneeID
		// The stage never moves backwards. Re-assigning after QA has
		// already reviewed keeps the later stage.
		if document.ProgressNumber < models.StageIndexed {
			document.ProgressNumber = models.StageIndexed
		}
	}
	document.PassedTo = &assigneeID

	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to assign document: %w", err)
	}
	s.recordHistory(ctx, actor, document, fmt.Sprintf("assigned to %s", nextRole))

	return document, nil
}

// Assignees lists every employee the actor could hand a document to.
// Empty for QA, whose work has no next stop.
func (s *DocumentService) Assignees(ctx context.Context, actor Actor) ([]models.User, error) {
	nextRole, ok := NextRole(actor.Role)
	if !ok {
		return []models.User{}, nil
	}
	users, err := s.userRepo.ListByRole(ctx, actor.CompanyID, nextRole)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	return users, nil
}

// SaveDraft moves a document to the reviewed stage without publishing.
// QA only.
func (s *DocumentService) SaveDraft(ctx context.Context, actor Actor, documentID uuid.UUID) (*models.Document, error) {
	if !actor.Role.Is(models.RoleQA) {
		return nil, ErrRoleNotPermitted
	}

	document, err := s.getScoped(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	document.ProgressNumber = models.StageReviewed
	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.recordHistory(ctx, actor, document, "draft saved")

	return document, nil
}

// Publish marks a document reviewed and published. QA only, and
// idempotent: publishing an already published document is a no-op.
func (s *DocumentService) Publish(ctx context.Context, actor Actor, documentID uuid.UUID) (*models.Document, error) {
	if !actor.Role.Is(models.RoleQA) {
		return nil, ErrRoleNotPermitted
	}

	document, err := s.getScoped(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	if document.IsPublished {
		return document, nil
	}

	document.ProgressNumber = models.StageReviewed
	document.Progress = models.ProgressComplete
	document.IsPublished = true
	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to publish document: %w", err)
	}
	s.recordHistory(ctx, actor, document, "published")

	return document, nil
}

// AddComment appends an audit comment under the actor's resolved display
// name. The append retries on revision conflicts so concurrent comments
// are never dropped.
func (s *DocumentService) AddComment(ctx context.Context, actor Actor, documentID uuid.UUID, text string) (*models.Document, error) {
	if text == "" {
		return nil, ErrEmptyComment
	}

	name, err := s.resolveName(ctx, actor)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < commentRetries; attempt++ {
		document, err := s.getScoped(ctx, actor, documentID)
		if err != nil {
			return nil, err
		}

		comments := append(document.Comments, models.Comment{
			Text:       text,
			AuthorID:   actor.ID,
			AuthorRole: actor.Role,
			AuthorName: name,
			CreatedAt:  time.Now().UTC(),
		})

		err = s.docRepo.AppendComment(ctx, document.ID, document.Revision, comments)
		if err == nil {
			document.Comments = comments
			document.Revision++
			s.recordHistory(ctx, actor, document, "comment added")
			return document, nil
		}
		if !errors.Is(err, repositories.ErrStaleRevision) {
			return nil, fmt.Errorf("failed to add comment: %w", err)
		}
	}
	return nil, ErrCommentConflict
}

// Get returns a single document with enrichment, scoped to the actor's
// tenant.
func (s *DocumentService) Get(ctx context.Context, actor Actor, documentID uuid.UUID) (*DocumentView, error) {
	document, err := s.getScoped(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	view, err := s.enrich(ctx, actor, *document)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// History lists the audit trail of a document, newest first.
func (s *DocumentService) History(ctx context.Context, actor Actor, documentID uuid.UUID) ([]models.DocumentEditHistory, error) {
	if _, err := s.getScoped(ctx, actor, documentID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document history: %w", err)
	}
	return entries, nil
}

// List returns the documents the actor's role may see. Owners and
// managers see the whole tenant; scanners and clients their own uploads;
// indexers and QA the documents passed to them.
func (s *DocumentService) List(ctx context.Context, actor Actor, filters repositories.DocumentFilters) ([]DocumentView, int64, error) {
	switch {
	case actor.Role.IsAny(models.RoleOwner, models.RoleManager):
		// unrestricted within the tenant
	case actor.Role.IsAny(models.RoleScanner, models.RoleClient):
		id := actor.ID
		filters.AddedByID = &id
	case actor.Role.Is(models.RoleIndexer):
		id := actor.ID
		filters.IndexerPassedID = &id
	case actor.Role.Is(models.RoleQA):
		id := actor.ID
		filters.QAPassedID = &id
	default:
		return nil, 0, ErrRoleNotPermitted
	}

	documents, total, err := s.docRepo.List(ctx, actor.CompanyID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	views := make([]DocumentView, 0, len(documents))
	for _, document := range documents {
		view, err := s.enrich(ctx, actor, document)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// ComputeShowMore decides whether the actions menu is visible to the
// actor. Authors, owners and managers see it only while the document is
// unassigned; the current handler sees it until publication; everyone
// else never does. Advisory UI metadata, not an authorization gate.
func ComputeShowMore(document *models.Document, actor Actor) bool {
	if document.AddedByID == actor.ID || actor.Role.IsAny(models.RoleManager, models.RoleOwner) {
		return document.PassedTo == nil
	}
	if document.IndexerPassedID != nil && *document.IndexerPassedID == actor.ID ||
		document.QAPassedID != nil && *document.QAPassedID == actor.ID {
		return document.PassedTo != nil && *document.PassedTo == actor.ID && !document.IsPublished
	}
	return false
}

func (s *DocumentService) getScoped(ctx context.Context, actor Actor, documentID uuid.UUID) (*models.Document, error) {
	document, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil || document.CompanyID != actor.CompanyID {
		return nil, ErrDocumentNotFound
	}
	return document, nil
}

// resolveName finds the actor's display name in whichever person table
// matches their role.
func (s *DocumentService) resolveName(ctx context.Context, actor Actor) (string, error) {
	if actor.IsClient() {
		client, err := s.clientRepo.GetByID(ctx, actor.ID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve client name: %w", err)
		}
		return client.Name, nil
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user name: %w", err)
	}
	return user.Name, nil
}

// resolvePerson is like resolveName but keyed on an arbitrary id + role.
func (s *DocumentService) resolvePerson(ctx context.Context, id uuid.UUID, role models.Role) PersonRef {
	if role.Is(models.RoleClient) {
		if client, err := s.clientRepo.GetByID(ctx, id); err == nil {
			return PersonRef{ID: id, Name: client.Name, Role: models.RoleClient}
		}
	} else if user, err := s.userRepo.GetByID(ctx, id); err == nil {
		return PersonRef{ID: id, Name: user.Name, Role: user.Role}
	}
	return PersonRef{ID: id, Role: role}
}

// enrich attaches resolved people and the show-more flag. The
// requested-by ref for a QA hand-off is the indexer who passed it,
// falling back to the original adder.
func (s *DocumentService) enrich(ctx context.Context, actor Actor, document models.Document) (*DocumentView, error) {
	view := &DocumentView{
		Document: document,
		AddedBy:  s.resolvePerson(ctx, document.AddedByID, document.AddedByRole),
		ShowMore: ComputeShowMore(&document, actor),
	}

	if document.QAPassedID != nil {
		var requester PersonRef
		if document.IndexerPassedID != nil {
			requester = s.resolvePerson(ctx, *document.IndexerPassedID, models.RoleIndexer)
		} else {
			requester = view.AddedBy
		}
		view.RequestedBy = &requester
	} else if document.IndexerPassedID != nil {
		view.RequestedBy = &view.AddedBy
	}

	return view, nil
}

func (s *DocumentService) recordHistory(ctx context.Context, actor Actor, document *models.Document, action string) {
	entry := &models.DocumentEditHistory{
		ID:         uuid.New(),
		CompanyID:  document.CompanyID,
		DocumentID: document.ID,
		EditorID:   actor.ID,
		EditorRole: actor.Role,
		Action:     action,
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("edit history write failed",
			"document_id", document.ID, "action", action, "error", err)
	}
}
