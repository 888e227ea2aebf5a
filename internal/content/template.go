// Package content resolve o documento de conteúdo de uma proposta contra
// o template padrão da agência, garantindo que o renderizador nunca veja
// uma chave ausente.
package content

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Facts carrega os dados da proposta usados para calcular os defaults
// (títulos e faixas de preço derivadas do valor).
type Facts struct {
	Name   string
	Client string
	Value  float64
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// formatBRL formata um valor monetário no padrão brasileiro: R$ 85.000,00.
func formatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %.2f", v)
}

// Defaults monta o documento padrão completo do template da agência.
// Toda chave reconhecida pelo renderizador está presente e não nula.
func Defaults(facts Facts) map[string]any {
	name := facts.Name
	if name == "" {
		name = "Proposta de Projeto"
	}
	client := facts.Client
	if client == "" {
		client = "Cliente"
	}

	title := facts.Name
	if title == "" {
		title = "THE FORCE"
	}

	return map[string]any{
		"title":         title,
		"subtitle":      "X THE FORCE",
		"proposalTitle": name,
		"clientName":    client,
		"projectScope": []any{
			"Desenvolvimento completo da identidade visual",
			"Criação de key visual",
			"Manual da marca",
			"Aplicações digitais e impressas",
		},
		"deliverablesList": []any{
			map[string]any{
				"title":       "Identidade Visual & Branding",
				"description": "Desenvolvimento completo da identidade visual incluindo logo, tipografia, paleta de cores e elementos visuais distintivos.",
				"number":      "01",
			},
			map[string]any{
				"title":       "Manual da Marca",
				"description": "Guia abrangente de aplicação da marca com especificações técnicas, usos corretos e diretrizes de implementação.",
				"number":      "02",
			},
			map[string]any{
				"title":       "Aplicações & Materiais",
				"description": "Implementação da identidade em diversos materiais digitais e impressos, garantindo consistência visual.",
				"number":      "03",
			},
		},
		"proposal1Price":       formatBRL(facts.Value),
		"proposal2Price":       formatBRL(facts.Value * 1.5),
		"completePackagePrice": formatBRL(facts.Value * 2),
		"projectDescription":   "Criamos experiências visuais extraordinárias que conectam marcas aos seus públicos através de design inovador e tecnologia de ponta.",
		"timelinePhases": []any{
			map[string]any{
				"phase":       "Pesquisa e Conceito",
				"duration":    "2 semanas",
				"description": "Análise de mercado, briefing e desenvolvimento conceitual",
			},
			map[string]any{
				"phase":       "Criação Visual",
				"duration":    "3 semanas",
				"description": "Desenvolvimento da identidade visual e key visual",
			},
			map[string]any{
				"phase":       "Aplicações",
				"duration":    "2 semanas",
				"description": "Criação de materiais e manual da marca",
			},
			map[string]any{
				"phase":       "Entrega Final",
				"duration":    "1 semana",
				"description": "Revisões finais e entrega completa",
			},
		},
		"creativeApproach":    "Nossa metodologia combina pesquisa de mercado, análise de tendências e criatividade para desenvolver soluções únicas que ressoam com o público-alvo.",
		"conceptualFramework": "Este projeto visa desenvolver uma identidade visual completa e impactante, estabelecendo uma presença marcante no mercado através de design estratégico e execução impecável.",
		"brandPersonality":    []any{"Inovador", "Criativo", "Impactante", "Memorável", "Autêntico"},
		"designPrinciples": []any{
			"Simplicidade elegante",
			"Impacto visual forte",
			"Versatilidade de aplicação",
			"Atemporalidade",
		},
		"contactEmail":       "contato@theforce.cc",
		"contactPhone":       "+55 (11) 99999-9999",
		"proposalValidUntil": "30 dias a partir da data de envio",
		"paymentTerms": []any{
			"50% na assinatura do contrato",
			"25% na aprovação do conceito",
			"25% na entrega final",
		},
		"deliveryTimeline": "6-8 semanas",
		"revisionRounds":   "3 rounds de revisão inclusos",
	}
}

// Resolve mescla o conteúdo armazenado sobre os defaults calculados.
// A mescla é rasa e por chave: uma chave presente no conteúdo armazenado
// substitui o valor padrão inteiro, sem mesclar campos internos.
// Nunca falha; conteúdo parcial é estado válido.
func Resolve(stored map[string]any, facts Facts) map[string]any {
	resolved := Defaults(facts)
	for key, value := range stored {
		resolved[key] = value
	}
	return resolved
}
