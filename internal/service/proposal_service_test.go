package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
	"github.com/theforce-cc/proposal-backend/internal/repository"
	"github.com/theforce-cc/proposal-backend/internal/service"
)

// mockProposalRepository é um armazenamento em memória para os testes.
// Reproduz a constraint única de slug do Postgres.
type mockProposalRepository struct {
	proposals map[uuid.UUID]*models.Proposal
	clock     time.Time

	// Injeção de falhas.
	failUpdateStatus error
	slugTakenOnce    map[string]bool
}

func newMockProposalRepository() *mockProposalRepository {
	return &mockProposalRepository{
		proposals:     make(map[uuid.UUID]*models.Proposal),
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		slugTakenOnce: make(map[string]bool),
	}
}

func (m *mockProposalRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *mockProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	if m.slugTakenOnce[p.Slug] {
		delete(m.slugTakenOnce, p.Slug)
		return repository.ErrSlugTaken
	}
	for _, existing := range m.proposals {
		if existing.Slug == p.Slug {
			return repository.ErrSlugTaken
		}
	}

	p.ID = uuid.New()
	now := m.tick()
	p.CreatedAt = now
	p.UpdatedAt = now

	stored := *p
	m.proposals[p.ID] = &stored
	return nil
}

func (m *mockProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	if p, ok := m.proposals[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperror.ErrProposalNotFound
}

func (m *mockProposalRepository) GetBySlug(ctx context.Context, slug string) (*models.Proposal, error) {
	for _, p := range m.proposals {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.ErrProposalNotFound
}

func (m *mockProposalRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, p := range m.proposals {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProposalRepository) List(ctx context.Context) ([]models.Proposal, error) {
	result := []models.Proposal{}
	for _, p := range m.proposals {
		result = append(result, *p)
	}
	// Mais recentes primeiro, como o ORDER BY created_at DESC.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.After(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *mockProposalRepository) Update(ctx context.Context, p *models.Proposal) error {
	if _, ok := m.proposals[p.ID]; !ok {
		return apperror.ErrProposalNotFound
	}
	p.UpdatedAt = m.tick()
	stored := *p
	m.proposals[p.ID] = &stored
	return nil
}

func (m *mockProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	if m.failUpdateStatus != nil {
		return m.failUpdateStatus
	}
	p, ok := m.proposals[id]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	p.Status = status
	p.UpdatedAt = m.tick()
	return nil
}

func (m *mockProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.proposals, id)
	return nil
}

// mockIdentity implementa o provisionamento idempotente do usuário sistema.
type mockIdentity struct {
	calls int
	user  *models.User
}

func (m *mockIdentity) GetOrCreateSystemUser(ctx context.Context) (*models.User, error) {
	m.calls++
	if m.user == nil {
		m.user = &models.User{
			ID:    models.SystemUserID,
			Email: "sistema@theforce.cc",
			Name:  "Sistema THE FORCE",
			Role:  models.RoleAdmin,
		}
	}
	return m.user, nil
}

func newTestService() (*service.ProposalService, *mockProposalRepository, *mockIdentity) {
	repo := newMockProposalRepository()
	identity := &mockIdentity{}
	return service.NewProposalService(repo, identity), repo, identity
}

func TestCreateProposalDefaults(t *testing.T) {
	svc, _, identity := newTestService()

	proposal, err := svc.Create(context.Background(), service.CreateProposalInput{
		Name:   "ALMA 2026",
		Client: "Cliente X",
		Value:  1000,
	})
	require.NoError(t, err)

	assert.Equal(t, "alma-2026", proposal.Slug)
	assert.Equal(t, models.StatusDraft, proposal.Status)
	assert.Equal(t, 1, proposal.Version)
	require.NotNil(t, proposal.CreatedBy)
	assert.Equal(t, models.SystemUserID, *proposal.CreatedBy)
	assert.Equal(t, 1, identity.calls)
}

func TestCreateProposalSlugCollision(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, service.CreateProposalInput{Name: "ALMA 2026", Client: "Cliente X", Value: 1000})
	require.NoError(t, err)

	second, err := svc.Create(ctx, service.CreateProposalInput{Name: "ALMA 2026", Client: "Cliente X", Value: 1000})
	require.NoError(t, err)

	third, err := svc.Create(ctx, service.CreateProposalInput{Name: "ALMA 2026", Client: "Cliente X", Value: 1000})
	require.NoError(t, err)

	assert.Equal(t, "alma-2026", first.Slug)
	assert.Equal(t, "alma-2026-1", second.Slug)
	assert.Equal(t, "alma-2026-2", third.Slug)
}

func TestCreateProposalRetriesOnInsertConflict(t *testing.T) {
	// A verificação de existência pode passar e o insert ainda bater na
	// constraint única (corrida entre criadores). O serviço deve tentar
	// o próximo sufixo em vez de devolver erro genérico.
	svc, repo, _ := newTestService()

	repo.slugTakenOnce["alma-2026"] = true

	proposal, err := svc.Create(context.Background(), service.CreateProposalInput{
		Name:   "ALMA 2026",
		Client: "Cliente X",
		Value:  1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "alma-2026-1", proposal.Slug)
}

func TestCreateProposalValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, service.CreateProposalInput{Name: "", Client: "Cliente X", Value: 1000})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, service.CreateProposalInput{Name: "Proposta", Client: "  ", Value: 1000})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, service.CreateProposalInput{Name: "Proposta", Client: "Cliente X", Value: -10})
	assert.True(t, apperror.IsValidation(err))

	// Nenhuma linha persistida.
	assert.Empty(t, repo.proposals)
}

func TestCreateProposalKeepsProvidedAuthor(t *testing.T) {
	svc, _, identity := newTestService()
	author := uuid.New()

	proposal, err := svc.Create(context.Background(), service.CreateProposalInput{
		Name:      "Proposta com autor",
		Client:    "Cliente X",
		Value:     500,
		CreatedBy: &author,
	})
	require.NoError(t, err)

	require.NotNil(t, proposal.CreatedBy)
	assert.Equal(t, author, *proposal.CreatedBy)
	assert.Zero(t, identity.calls, "não deveria provisionar o usuário sistema")
}

func TestGetByIDOrSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Proposta Alfa", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	byID, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	bySlug, err := svc.Get(ctx, "proposta-alfa")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = svc.Get(ctx, "nao-existe")
	assert.True(t, apperror.IsNotFound(err))
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"Primeira", "Segunda", "Terceira"} {
		_, err := svc.Create(ctx, service.CreateProposalInput{Name: name, Client: "Cliente X", Value: 10})
		require.NoError(t, err)
	}

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	assert.Equal(t, "Terceira", listed[0].Name)
	assert.Equal(t, "Segunda", listed[1].Name)
	assert.Equal(t, "Primeira", listed[2].Name)
}

func TestUpdateDoesNotRegenerateSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Nome Original", Client: "Cliente X", Value: 100})
	require.NoError(t, err)
	require.Equal(t, "nome-original", created.Slug)

	newName := "Nome Completamente Diferente"
	updated, err := svc.Update(ctx, created.ID, service.UpdateProposalInput{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "nome-original", updated.Slug)
}

func TestUpdateVersionOnlyOnContentChange(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Proposta", Client: "Cliente X", Value: 100})
	require.NoError(t, err)
	require.Equal(t, 1, created.Version)

	// Mudança de campo simples não avança a versão.
	newValue := 250.0
	updated, err := svc.Update(ctx, created.ID, service.UpdateProposalInput{Value: &newValue})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)

	// Mudança de conteúdo avança.
	updated, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{
		Content: map[string]any{"title": "Novo título"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	// Escrever o mesmo conteúdo não avança.
	updated, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{
		Content: map[string]any{"title": "Novo título"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Proposta", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	// draft → approved é ilegal.
	approved := models.StatusApproved
	_, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &approved})
	assert.True(t, apperror.IsValidation(err))

	// draft → sent → approved é o caminho legal.
	sent := models.StatusSent
	updated, err := svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, updated.Status)

	updated, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	// approved é terminal para escritas de status diferentes.
	rejected := models.StatusRejected
	_, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &rejected})
	assert.True(t, apperror.IsValidation(err))

	// Escrever o mesmo status é no-op permitido.
	_, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &approved})
	assert.NoError(t, err)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	name := "Qualquer"
	_, err := svc.Update(context.Background(), uuid.New(), service.UpdateProposalInput{Name: &name})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Para remover", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	// Remover de novo é sucesso pela política suave.
	require.NoError(t, svc.Delete(ctx, created.ID))
	// Id que nunca existiu também.
	require.NoError(t, svc.Delete(ctx, uuid.New()))
}

func TestPublicReadTracksFirstView(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Proposta Enviada", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	sent := models.StatusSent
	_, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &sent})
	require.NoError(t, err)

	// Primeira leitura pública: a resposta já traz o status pós-transição.
	got, err := svc.GetPublicBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, got.Status)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, stored.Status)

	// Segunda leitura não muda mais nada.
	firstUpdatedAt := stored.UpdatedAt
	got, err = svc.GetPublicBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, got.Status)

	stored, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, firstUpdatedAt, stored.UpdatedAt)
}

func TestPublicReadDoesNotTouchDraft(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Rascunho", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	got, err := svc.GetPublicBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)
}

func TestPublicReadSurvivesViewTrackingFailure(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{Name: "Proposta", Client: "Cliente X", Value: 100})
	require.NoError(t, err)

	sent := models.StatusSent
	_, err = svc.Update(ctx, created.ID, service.UpdateProposalInput{Status: &sent})
	require.NoError(t, err)

	// A gravação da visualização falha; a leitura entrega o conteúdo
	// mesmo assim, com o status pré-transição.
	repo.failUpdateStatus = errors.New("conexão recusada")

	got, err := svc.GetPublicBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, got.Status)
	assert.NotEmpty(t, got.ContentJSON)
}

func TestPublicReadResolvesContent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateProposalInput{
		Name:    "Proposta Resolvida",
		Client:  "Cliente X",
		Value:   1000,
		Content: map[string]any{"title": "Título customizado"},
	})
	require.NoError(t, err)

	got, err := svc.GetPublicBySlug(ctx, created.Slug)
	require.NoError(t, err)

	resolved := map[string]any{}
	require.NoError(t, json.Unmarshal(got.ContentJSON, &resolved))

	// A chave armazenada prevalece; as ausentes vêm do template.
	assert.Equal(t, "Título customizado", resolved["title"])
	assert.Equal(t, "Cliente X", resolved["clientName"])
	assert.Contains(t, resolved, "deliverablesList")
	assert.Contains(t, resolved, "timelinePhases")
	assert.Contains(t, resolved, "paymentTerms")
}

func TestCreateSlugExhaustion(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	// Ocupa a base e os primeiros 999 sufixos.
	for i := 0; i < 1000; i++ {
		slugValue := "saturado"
		if i > 0 {
			slugValue = "saturado-" + strconv.Itoa(i)
		}
		p := &models.Proposal{
			Name:    "Saturado",
			Client:  "Cliente X",
			Slug:    slugValue,
			Status:  models.StatusDraft,
			Version: 1,
		}
		require.NoError(t, repo.Create(ctx, p))
	}

	_, err := svc.Create(ctx, service.CreateProposalInput{Name: "Saturado", Client: "Cliente X", Value: 1})
	assert.True(t, apperror.IsConflict(err))
}
