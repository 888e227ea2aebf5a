package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"

	"github.com/theforce-cc/proposal-backend/internal/content"
	"github.com/theforce-cc/proposal-backend/internal/logger"
	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
	"github.com/theforce-cc/proposal-backend/internal/repository"
	"github.com/theforce-cc/proposal-backend/internal/slug"
	"github.com/theforce-cc/proposal-backend/internal/ws"
)

// maxSlugAttempts limita o loop de resolução de colisão de slug.
// Na prática é inalcançável, mas evita loop infinito sob carga patológica.
const maxSlugAttempts = 1000

// ProposalRepository é o contrato de persistência consumido pelo serviço.
type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetBySlug(ctx context.Context, slug string) (*models.Proposal, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]models.Proposal, error)
	Update(ctx context.Context, p *models.Proposal) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdentityProvider fornece a identidade dona quando nenhum autor é informado.
type IdentityProvider interface {
	GetOrCreateSystemUser(ctx context.Context) (*models.User, error)
}

// ProposalService implementa o ciclo de vida das propostas: criação com
// slug único, atualização parcial com máquina de estados, leitura pública
// com rastreamento de visualização e remoção idempotente.
type ProposalService struct {
	proposals ProposalRepository
	identity  IdentityProvider
	hub       *ws.Hub
}

// NewProposalService cria o serviço.
func NewProposalService(proposals ProposalRepository, identity IdentityProvider) *ProposalService {
	return &ProposalService{
		proposals: proposals,
		identity:  identity,
	}
}

// SetHub conecta o hub de eventos do dashboard. Opcional.
func (s *ProposalService) SetHub(hub *ws.Hub) {
	s.hub = hub
}

// CreateProposalInput carrega os dados de criação.
type CreateProposalInput struct {
	Name      string
	Client    string
	ClientID  *uuid.UUID
	Value     float64
	Content   map[string]any
	CreatedBy *uuid.UUID
}

// Create valida a entrada, gera um slug único e persiste a proposta
// sempre como rascunho na versão 1.
func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (*models.Proposal, error) {
	name := strings.TrimSpace(input.Name)
	client := strings.TrimSpace(input.Client)

	if name == "" || client == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "nome e cliente são obrigatórios")
	}
	if input.Value < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "o valor da proposta não pode ser negativo")
	}

	createdBy := input.CreatedBy
	if createdBy == nil {
		system, err := s.identity.GetOrCreateSystemUser(ctx)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "não foi possível garantir o usuário sistema")
		}
		createdBy = &system.ID
	}

	contentJSON, err := marshalContent(input.Content)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "conteúdo da proposta inválido")
	}

	base := slug.Generate(name)
	if base == "" {
		base = "proposta"
	}

	proposal := &models.Proposal{
		Name:        name,
		Client:      client,
		ClientID:    input.ClientID,
		Value:       input.Value,
		Status:      models.StatusDraft,
		Version:     1,
		ContentJSON: contentJSON,
		CreatedBy:   createdBy,
	}

	// A verificação de existência é melhor esforço: dois criadores
	// concorrentes podem enxergar o mesmo slug livre. A constraint única
	// decide no insert, e a violação apenas avança para o próximo sufixo.
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate := slug.WithSuffix(base, attempt)

		taken, err := s.proposals.SlugExists(ctx, candidate)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "falha ao verificar o slug")
		}
		if taken {
			continue
		}

		proposal.Slug = candidate
		err = s.proposals.Create(ctx, proposal)
		if err == nil {
			s.publish(ws.EventProposalCreated, proposal)
			return proposal, nil
		}
		if errors.Is(err, repository.ErrSlugTaken) {
			continue
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "não foi possível criar a proposta")
	}

	return nil, apperror.ErrSlugExhausted
}

// Get devolve a proposta por id ou slug, sem efeitos colaterais.
func (s *ProposalService) Get(ctx context.Context, idOrSlug string) (*models.Proposal, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.proposals.GetByID(ctx, id)
	}
	return s.proposals.GetBySlug(ctx, idOrSlug)
}

// List devolve todas as propostas, mais recentes primeiro.
func (s *ProposalService) List(ctx context.Context) ([]models.Proposal, error) {
	return s.proposals.List(ctx)
}

// UpdateProposalInput carrega os campos parciais de atualização.
// Campos nil ficam como estão.
type UpdateProposalInput struct {
	Name     *string
	Client   *string
	ClientID *uuid.UUID
	Value    *float64
	Status   *models.ProposalStatus
	Content  map[string]any
}

// Update aplica uma atualização parcial. Mudanças de status passam pela
// whitelist de transições; a versão só avança quando o conteúdo muda.
func (s *ProposalService) Update(ctx context.Context, id uuid.UUID, input UpdateProposalInput) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "o nome não pode ficar vazio")
		}
		// O slug não é regenerado: uma vez atribuído, é imutável.
		proposal.Name = name
	}

	if input.Client != nil {
		client := strings.TrimSpace(*input.Client)
		if client == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "o cliente não pode ficar vazio")
		}
		proposal.Client = client
	}

	if input.ClientID != nil {
		proposal.ClientID = input.ClientID
	}

	if input.Value != nil {
		if *input.Value < 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "o valor da proposta não pode ser negativo")
		}
		proposal.Value = *input.Value
	}

	if input.Status != nil {
		next := *input.Status
		if !next.IsValid() {
			return nil, apperror.New(apperror.ErrCodeValidation, "status desconhecido: "+string(next))
		}
		if !proposal.Status.CanTransitionTo(next) {
			return nil, apperror.New(apperror.ErrCodeValidation,
				"transição de status não permitida: "+string(proposal.Status)+" → "+string(next))
		}
		proposal.Status = next
	}

	if input.Content != nil {
		changed, err := contentChanged(proposal.ContentJSON, input.Content)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "conteúdo da proposta inválido")
		}
		if changed {
			contentJSON, err := marshalContent(input.Content)
			if err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "conteúdo da proposta inválido")
			}
			proposal.ContentJSON = contentJSON
			proposal.Version++
		}
	}

	if err := s.proposals.Update(ctx, proposal); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "não foi possível atualizar a proposta")
	}

	s.publish(ws.EventProposalUpdated, proposal)
	return proposal, nil
}

// Delete remove a proposta. Política suave: remover um id inexistente
// é sucesso, a remoção é idempotente.
func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.proposals.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "não foi possível remover a proposta")
	}

	s.publish(ws.EventProposalDeleted, &models.Proposal{ID: id})
	return nil
}

// GetPublicBySlug é o caminho público de leitura: busca pelo slug,
// registra a primeira visualização (sent → viewed) antes de montar a
// resposta e devolve o conteúdo já resolvido contra o template padrão.
// Falha ao registrar a visualização nunca bloqueia a entrega do conteúdo.
func (s *ProposalService) GetPublicBySlug(ctx context.Context, slugValue string) (*models.Proposal, error) {
	proposal, err := s.proposals.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	if proposal.Status == models.StatusSent {
		if err := s.proposals.UpdateStatus(ctx, proposal.ID, models.StatusViewed); err != nil {
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"proposal_id": proposal.ID,
					"slug":        proposal.Slug,
					"error":       err.Error(),
				}).Warn("falha ao registrar a visualização da proposta")
			}
		} else {
			proposal.Status = models.StatusViewed
			s.publish(ws.EventProposalViewed, proposal)
		}
	}

	resolved, err := s.resolveContent(proposal)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "não foi possível resolver o conteúdo da proposta")
	}
	proposal.ContentJSON = resolved

	return proposal, nil
}

// resolveContent mescla o conteúdo armazenado sobre os defaults do template.
// Conteúdo armazenado ilegível é tratado como vazio, nunca como erro fatal.
func (s *ProposalService) resolveContent(p *models.Proposal) (types.JSONText, error) {
	stored := map[string]any{}
	if len(p.ContentJSON) > 0 {
		if err := json.Unmarshal(p.ContentJSON, &stored); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("proposal_id", p.ID).Warn("conteúdo armazenado ilegível, usando template padrão")
			}
			stored = map[string]any{}
		}
	}

	resolved := content.Resolve(stored, content.Facts{
		Name:   p.Name,
		Client: p.Client,
		Value:  p.Value,
	})

	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

// publish envia o evento para o hub quando ele está conectado.
func (s *ProposalService) publish(eventType string, p *models.Proposal) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ws.ProposalEvent{
		Type:       eventType,
		ProposalID: p.ID,
		Slug:       p.Slug,
		Status:     string(p.Status),
	})
}

// marshalContent serializa o conteúdo; nil vira o objeto vazio, porque
// os defaults são aplicados na leitura, não na escrita.
func marshalContent(content map[string]any) (types.JSONText, error) {
	if content == nil {
		return types.JSONText("{}"), nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

// contentChanged compara o conteúdo armazenado com o novo após
// canonicalização, para não avançar a versão em escritas sem mudança.
func contentChanged(stored types.JSONText, next map[string]any) (bool, error) {
	current := map[string]any{}
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &current); err != nil {
			// Conteúdo antigo ilegível conta como mudança.
			return true, nil
		}
	}

	// Canonicaliza o novo conteúdo passando por JSON para que números e
	// tipos comparem de forma estável.
	raw, err := json.Marshal(next)
	if err != nil {
		return false, err
	}
	canonical := map[string]any{}
	if err := json.Unmarshal(raw, &canonical); err != nil {
		return false, err
	}

	return !reflect.DeepEqual(current, canonical), nil
}
