package service

import (
	"context"
	"fmt"

	"github.com/theforce-cc/proposal-backend/internal/logger"
	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
)

// SeedService popula o banco de desenvolvimento com propostas de exemplo.
type SeedService struct {
	proposals *ProposalService
	identity  IdentityProvider
}

// NewSeedService cria o serviço de seed.
func NewSeedService(proposals *ProposalService, identity IdentityProvider) *SeedService {
	return &SeedService{
		proposals: proposals,
		identity:  identity,
	}
}

type seedProposal struct {
	name   string
	client string
	value  float64
	status models.ProposalStatus
}

// As amostras espelham o portfólio de demonstração da agência.
var sampleProposals = []seedProposal{
	{"Rebranding Corporativo - TechNova", "TechNova Solutions", 85000, models.StatusApproved},
	{"Campanha Digital - EcoVerde", "EcoVerde Sustentabilidade", 45000, models.StatusSent},
	{"App Mobile - FitLife", "FitLife Academia", 120000, models.StatusViewed},
	{"E-commerce - Artesã Brasil", "Artesã Brasil", 75000, models.StatusDraft},
	{"Identidade Visual - StartupHub", "StartupHub Incubadora", 35000, models.StatusRejected},
	{"Portal Educacional - EduTech", "EduTech Educação", 95000, models.StatusApproved},
}

// Seed cria o usuário sistema e as propostas de exemplo pelo mesmo
// caminho de criação usado em produção, exercitando slug e defaults.
// Devolve quantas propostas foram criadas.
func (s *SeedService) Seed(ctx context.Context) (int, error) {
	if _, err := s.identity.GetOrCreateSystemUser(ctx); err != nil {
		return 0, fmt.Errorf("seed service: falha ao garantir o usuário sistema: %w", err)
	}

	created := 0
	for _, sample := range sampleProposals {
		proposal, err := s.proposals.Create(ctx, CreateProposalInput{
			Name:   sample.name,
			Client: sample.client,
			Value:  sample.value,
		})
		if err != nil {
			// Colisão de slug exaurida não deve acontecer no seed; outros
			// erros interrompem para diagnóstico.
			if apperror.IsConflict(err) {
				continue
			}
			return created, fmt.Errorf("seed service: falha ao criar %q: %w", sample.name, err)
		}

		// As amostras nascem como rascunho; avança o status pelas
		// transições legais até o estado desejado.
		if err := s.advanceStatus(ctx, proposal, sample.status); err != nil {
			return created, err
		}

		created++
	}

	if logger.Log != nil {
		logger.Log.WithField("created", created).Info("seed concluído")
	}

	return created, nil
}

// advanceStatus caminha o rascunho até o status alvo respeitando a
// whitelist de transições.
func (s *SeedService) advanceStatus(ctx context.Context, proposal *models.Proposal, target models.ProposalStatus) error {
	var path []models.ProposalStatus
	switch target {
	case models.StatusDraft:
		return nil
	case models.StatusSent:
		path = []models.ProposalStatus{models.StatusSent}
	case models.StatusViewed:
		path = []models.ProposalStatus{models.StatusSent, models.StatusViewed}
	case models.StatusApproved:
		path = []models.ProposalStatus{models.StatusSent, models.StatusApproved}
	case models.StatusRejected:
		path = []models.ProposalStatus{models.StatusSent, models.StatusRejected}
	}

	for _, next := range path {
		status := next
		if _, err := s.proposals.Update(ctx, proposal.ID, UpdateProposalInput{Status: &status}); err != nil {
			return fmt.Errorf("seed service: falha ao avançar %q para %s: %w", proposal.Name, next, err)
		}
	}

	return nil
}
