package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/contract"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
)

// memStore is an in-memory database behind the fake unit of work. It
// understands the specifications the services use.
type memStore struct {
	mu sync.Mutex

	annotations   []*entity.Annotation
	comments      []*entity.AnnotationComment
	shares        []*entity.AnnotationShare
	embeddings    []*entity.AnnotationEmbedding
	documents     []*entity.Document
	plans         []*entity.SubscriptionPlan
	subscriptions []*entity.UserSubscription
	counters      map[string]int

	commits int
	// fail makes the named operation return the error, e.g. "annotation.create".
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		counters: map[string]int{},
		fail:     map[string]error{},
	}
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) isShared(annotationId, userId uuid.UUID) bool {
	for _, sh := range s.shares {
		if sh.AnnotationId == annotationId && sh.UserId == userId {
			return true
		}
	}
	return false
}

func unsupported(spec specification.Specification) bool {
	panic(fmt.Sprintf("fake store: unsupported specification %T", spec))
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *memStore) matchAnnotation(a *entity.Annotation, specs []specification.Specification) bool {
	for _, spec := range specs {
		ok := true
		switch sp := spec.(type) {
		case specification.ByID:
			ok = a.Id == sp.ID
		case specification.ByIDs:
			ok = containsID(sp.IDs, a.Id)
		case specification.UserOwnedBy:
			ok = a.UserId == sp.UserID
		case specification.ByDocumentID:
			ok = a.DocumentId == sp.DocumentID
		case specification.ByPageNumber:
			ok = a.PageNumber == sp.PageNumber
		case specification.ByAnnotationType:
			ok = string(a.Type) == sp.Type
		case specification.ByColor:
			ok = string(a.Color) == sp.Color
		case specification.VisibleTo:
			ok = a.UserId == sp.UserID || s.isShared(a.Id, sp.UserID)
		case specification.OrderBy:
		default:
			ok = unsupported(spec)
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchComment(c *entity.AnnotationComment, specs []specification.Specification) bool {
	for _, spec := range specs {
		ok := true
		switch sp := spec.(type) {
		case specification.ByID:
			ok = c.Id == sp.ID
		case specification.ByAnnotationID:
			ok = c.AnnotationId == sp.AnnotationID
		case specification.UserOwnedBy:
			ok = c.UserId == sp.UserID
		case specification.OrderBy:
		default:
			ok = unsupported(spec)
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchShare(sh *entity.AnnotationShare, specs []specification.Specification) bool {
	for _, spec := range specs {
		ok := true
		switch sp := spec.(type) {
		case specification.ByAnnotationID:
			ok = sh.AnnotationId == sp.AnnotationID
		case specification.ByAnnotationIDs:
			ok = containsID(sp.AnnotationIDs, sh.AnnotationId)
		case specification.UserOwnedBy:
			ok = sh.UserId == sp.UserID
		case specification.OrderBy:
		default:
			ok = unsupported(spec)
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchDocument(d *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		ok := true
		switch sp := spec.(type) {
		case specification.ByID:
			ok = d.Id == sp.ID
		case specification.UserOwnedBy:
			ok = d.UserId == sp.UserID
		case specification.OrderBy:
		default:
			ok = unsupported(spec)
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchPlan(p *entity.SubscriptionPlan, specs []specification.Specification) bool {
	for _, spec := range specs {
		ok := true
		switch sp := spec.(type) {
		case specification.ByID:
			ok = p.Id == sp.ID
		case specification.BySlug:
			ok = p.Slug == sp.Slug
		case specification.FilterBy:
			if sp.Field != "is_active" {
				unsupported(spec)
			}
			ok = p.IsActive == sp.Value.(bool)
		case specification.OrderBy:
		default:
			ok = unsupported(spec)
		}
		if !ok {
			return false
		}
	}
	return true
}

// fakeUoW implements unitofwork.UnitOfWork over a memStore.
type fakeUoW struct {
	store *memStore
	inTx  bool
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.inTx = false
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.inTx = false
	return nil
}

func (u *fakeUoW) AnnotationRepository() contract.AnnotationRepository {
	return &fakeAnnotationRepo{u.store}
}

func (u *fakeUoW) AnnotationCommentRepository() contract.AnnotationCommentRepository {
	return &fakeCommentRepo{u.store}
}

func (u *fakeUoW) AnnotationShareRepository() contract.AnnotationShareRepository {
	return &fakeShareRepo{u.store}
}

func (u *fakeUoW) AnnotationEmbeddingRepository() contract.AnnotationEmbeddingRepository {
	return &fakeEmbeddingRepo{u.store}
}

func (u *fakeUoW) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{u.store}
}

func (u *fakeUoW) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubscriptionRepo{u.store}
}

func (u *fakeUoW) UsageCounterRepository() contract.UsageCounterRepository {
	return &fakeCounterRepo{u.store}
}

type fakeAnnotationRepo struct{ s *memStore }

func (r *fakeAnnotationRepo) Create(ctx context.Context, a *entity.Annotation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("annotation.create"); err != nil {
		return err
	}
	r.s.annotations = append(r.s.annotations, a.Clone())
	return nil
}

func (r *fakeAnnotationRepo) Update(ctx context.Context, a *entity.Annotation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("annotation.update"); err != nil {
		return err
	}
	for i, existing := range r.s.annotations {
		if existing.Id == a.Id {
			r.s.annotations[i] = a.Clone()
			return nil
		}
	}
	return nil
}

func (r *fakeAnnotationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("annotation.delete"); err != nil {
		return err
	}
	for i, existing := range r.s.annotations {
		if existing.Id == id {
			r.s.annotations = append(r.s.annotations[:i], r.s.annotations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeAnnotationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Annotation, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeAnnotationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Annotation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Annotation
	for _, a := range r.s.annotations {
		if r.s.matchAnnotation(a, specs) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *fakeAnnotationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type fakeCommentRepo struct{ s *memStore }

func (r *fakeCommentRepo) Create(ctx context.Context, c *entity.AnnotationComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.comments = append(r.s.comments, &cp)
	return nil
}

func (r *fakeCommentRepo) remove(keep func(c *entity.AnnotationComment) bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if keep(c) {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.remove(func(c *entity.AnnotationComment) bool { return c.Id != id })
	return nil
}

func (r *fakeCommentRepo) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	r.remove(func(c *entity.AnnotationComment) bool { return c.AnnotationId != annotationId })
	return nil
}

func (r *fakeCommentRepo) DeleteReplies(ctx context.Context, parentId uuid.UUID) error {
	r.remove(func(c *entity.AnnotationComment) bool { return c.ParentId == nil || *c.ParentId != parentId })
	return nil
}

func (r *fakeCommentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationComment, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeCommentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AnnotationComment
	for _, c := range r.s.comments {
		if matchComment(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeShareRepo struct{ s *memStore }

func (r *fakeShareRepo) Upsert(ctx context.Context, share *entity.AnnotationShare) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.shares {
		if existing.AnnotationId == share.AnnotationId && existing.UserId == share.UserId {
			existing.Permission = share.Permission
			existing.GrantedBy = share.GrantedBy
			*share = *existing
			return nil
		}
	}
	cp := *share
	r.s.shares = append(r.s.shares, &cp)
	return nil
}

func (r *fakeShareRepo) remove(keep func(sh *entity.AnnotationShare) bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.shares[:0]
	for _, sh := range r.s.shares {
		if keep(sh) {
			kept = append(kept, sh)
		}
	}
	r.s.shares = kept
}

func (r *fakeShareRepo) Delete(ctx context.Context, annotationId uuid.UUID, userId uuid.UUID) error {
	r.remove(func(sh *entity.AnnotationShare) bool {
		return sh.AnnotationId != annotationId || sh.UserId != userId
	})
	return nil
}

func (r *fakeShareRepo) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	r.remove(func(sh *entity.AnnotationShare) bool { return sh.AnnotationId != annotationId })
	return nil
}

func (r *fakeShareRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationShare, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeShareRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationShare, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AnnotationShare
	for _, sh := range r.s.shares {
		if matchShare(sh, specs) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeShareRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeEmbeddingRepo struct{ s *memStore }

func (r *fakeEmbeddingRepo) Upsert(ctx context.Context, e *entity.AnnotationEmbedding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	for i, existing := range r.s.embeddings {
		if existing.AnnotationId == e.AnnotationId {
			r.s.embeddings[i] = &cp
			return nil
		}
	}
	r.s.embeddings = append(r.s.embeddings, &cp)
	return nil
}

func (r *fakeEmbeddingRepo) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.embeddings[:0]
	for _, e := range r.s.embeddings {
		if e.AnnotationId != annotationId {
			kept = append(kept, e)
		}
	}
	r.s.embeddings = kept
	return nil
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, query []float32, limit int, userId uuid.UUID, documentId *uuid.UUID, threshold float64) ([]*contract.ScoredAnnotationEmbedding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*contract.ScoredAnnotationEmbedding
	for _, e := range r.s.embeddings {
		var owner, document uuid.UUID
		for _, a := range r.s.annotations {
			if a.Id == e.AnnotationId {
				owner, document = a.UserId, a.DocumentId
			}
		}
		if documentId != nil && document != *documentId {
			continue
		}
		if owner != userId && !r.s.isShared(e.AnnotationId, userId) {
			continue
		}
		sim := cosine(query, e.Value)
		if sim < threshold {
			continue
		}
		cp := *e
		out = append(out, &contract.ScoredAnnotationEmbedding{Embedding: &cp, Similarity: sim})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type fakeDocumentRepo struct{ s *memStore }

func (r *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *d
	r.s.documents = append(r.s.documents, &cp)
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.documents {
		if existing.Id == d.Id {
			cp := *d
			r.s.documents[i] = &cp
		}
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.documents {
		if existing.Id == id {
			r.s.documents = append(r.s.documents[:i], r.s.documents[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.s.documents {
		if matchDocument(d, specs) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSubscriptionRepo struct{ s *memStore }

func (r *fakeSubscriptionRepo) CreatePlan(ctx context.Context, p *entity.SubscriptionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.plans = append(r.s.plans, &cp)
	return nil
}

func (r *fakeSubscriptionRepo) UpdatePlan(ctx context.Context, p *entity.SubscriptionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.plans {
		if existing.Id == p.Id {
			cp := *p
			r.s.plans[i] = &cp
		}
	}
	return nil
}

func (r *fakeSubscriptionRepo) FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error) {
	all, _ := r.FindAllPlans(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSubscriptionRepo) FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SubscriptionPlan
	for _, p := range r.s.plans {
		if matchPlan(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) CreateSubscription(ctx context.Context, sub *entity.UserSubscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sub
	r.s.subscriptions = append(r.s.subscriptions, &cp)
	return nil
}

// FindAllSubscriptions only understands the owner filter and returns the
// newest first.
func (r *fakeSubscriptionRepo) FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.UserSubscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UserSubscription
	for _, sub := range r.s.subscriptions {
		keep := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.UserOwnedBy:
				keep = keep && sub.UserId == sp.UserID
			case specification.OrderBy:
			default:
				unsupported(spec)
			}
		}
		if keep {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeCounterRepo struct{ s *memStore }

func counterKey(userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) string {
	return fmt.Sprintf("%s/%s/%d", userId, resource, periodStart.Unix())
}

func (r *fakeCounterRepo) Get(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.counters[counterKey(userId, resource, periodStart)], nil
}

func (r *fakeCounterRepo) Increment(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[counterKey(userId, resource, periodStart)]++
	return nil
}

// eventRecorder captures published domain events.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.BaseEvent
}

func (r *eventRecorder) Publish(ctx context.Context, evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.New(evt.EventType(), evt.Payload()))
	return nil
}

func (r *eventRecorder) ofType(eventType string) []events.BaseEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.BaseEvent
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// jobRecorder captures queued embedding jobs.
type jobRecorder struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *jobRecorder) Publish(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *jobRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

// fakeEmbedder maps known texts to fixed vectors; anything else gets a
// vector orthogonal to all of them.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

// deliveryRecorder implements Delivery.
type deliveryRecorder struct {
	mu         sync.Mutex
	toUser     map[uuid.UUID][]dto.WSOutbound
	toDocument map[uuid.UUID][]dto.WSOutbound
}

func newDeliveryRecorder() *deliveryRecorder {
	return &deliveryRecorder{
		toUser:     map[uuid.UUID][]dto.WSOutbound{},
		toDocument: map[uuid.UUID][]dto.WSOutbound{},
	}
}

func (d *deliveryRecorder) SendToUser(userID uuid.UUID, msg dto.WSOutbound) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toUser[userID] = append(d.toUser[userID], msg)
}

func (d *deliveryRecorder) BroadcastToDocument(documentID uuid.UUID, except uuid.UUID, msg dto.WSOutbound) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toDocument[documentID] = append(d.toDocument[documentID], msg)
}

func (d *deliveryRecorder) userMessages(userID uuid.UUID) []dto.WSOutbound {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dto.WSOutbound(nil), d.toUser[userID]...)
}

// fixture wires every service over one memStore.
type fixture struct {
	store     *memStore
	factory   *fakeFactory
	events    *eventRecorder
	jobs      *jobRecorder
	usage     *usageService
	now       time.Time
	log       logger.ILogger
	owner     uuid.UUID
	document  *entity.Document
	annotator IAnnotationService
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:   store,
		factory: &fakeFactory{store: store},
		events:  &eventRecorder{},
		jobs:    &jobRecorder{},
		now:     time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		log:     logger.NewNopLogger(),
		owner:   uuid.New(),
	}
	f.usage = NewUsageService(f.factory, f.log).(*usageService)
	f.usage.now = func() time.Time { return f.now }

	f.document = &entity.Document{
		Id:         uuid.New(),
		UserId:     f.owner,
		Title:      "Lease agreement",
		PageCount:  3,
		PageWidth:  612,
		PageHeight: 792,
		Status:     entity.DocumentStatusCompleted,
		Progress:   100,
		CreatedAt:  f.now,
	}
	store.documents = append(store.documents, f.document)

	f.annotator = NewAnnotationService(f.factory, f.usage, f.jobs, f.events, f.log, 5)
	return f
}

// subscribe puts the user on a paid plan with the given limits.
func (f *fixture) subscribe(userId uuid.UUID, plan entity.SubscriptionPlan) *entity.SubscriptionPlan {
	plan.Id = uuid.New()
	plan.IsActive = true
	f.store.plans = append(f.store.plans, &plan)
	f.store.subscriptions = append(f.store.subscriptions, &entity.UserSubscription{
		Id:                 uuid.New(),
		UserId:             userId,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusActive,
		CurrentPeriodStart: f.now.AddDate(0, 0, -1),
		CurrentPeriodEnd:   f.now.AddDate(0, 1, 0),
		PaymentStatus:      entity.PaymentStatusPaid,
		CreatedAt:          f.now.AddDate(0, 0, -1),
	})
	return &plan
}

// seedAnnotation stores an annotation owned by the document owner without
// going through the service.
func (f *fixture) seedAnnotation(page int) *entity.Annotation {
	content := "termination clause"
	a := &entity.Annotation{
		Id:         uuid.New(),
		DocumentId: f.document.Id,
		UserId:     f.owner,
		PageNumber: page,
		Type:       entity.AnnotationTypeHighlight,
		Color:      entity.ColorYellow,
		Position:   entity.Position{X: 10, Y: 10, Width: 100, Height: 20},
		Content:    &content,
		Properties: map[string]interface{}{},
		CreatedAt:  f.now,
	}
	f.store.annotations = append(f.store.annotations, a)
	return a
}

func (f *fixture) share(annotationId, userId uuid.UUID, permission entity.SharePermission) {
	f.store.shares = append(f.store.shares, &entity.AnnotationShare{
		Id:           uuid.New(),
		AnnotationId: annotationId,
		UserId:       userId,
		Permission:   permission,
		GrantedBy:    f.owner,
		CreatedAt:    f.now,
	})
}

func highlightRequest(documentId uuid.UUID) *dto.CreateAnnotationRequest {
	return &dto.CreateAnnotationRequest{
		DocumentId: documentId,
		PageNumber: 1,
		Type:       string(entity.AnnotationTypeHighlight),
		Color:      string(entity.ColorYellow),
		Position:   dto.PositionDTO{X: 100, Y: 100, Width: 120, Height: 14},
	}
}
