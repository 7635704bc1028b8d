// Package status is the static catalog of obligation status codes. Every
// status an obligation can hold is registered here together with the flows it
// takes part in; codes outside the registry are rejected everywhere.
package status

import (
	"fmt"
	"strings"
)

// Code is the numeric status identifier persisted with obligations and records.
type Code int

const (
	Unknown Code = iota
	NaoIniciado
	Pendente
	EmAndamento
	Atrasada
	EmValidacaoRegulatorio
	NaoAplicavelSuspensa
	Recebido
	PreAnalise
	EmAnaliseAreaTecnica
	EmAnaliseGerenteRegulatorio
	EmAprovacao
	AnaliseRegulatoria
	EmChancelamento
	EmAssinaturaDiretoria
	Concluido
	Arquivado
	EmElaboracao
	AprovacaoTramitacao
)

// Flow identifies a lifecycle a status takes part in. A status may belong to
// several flows.
type Flow uint8

const (
	FlowGeneral Flow = 1 << iota
	FlowCorrespondence
	FlowObligation

	FlowShared = FlowGeneral | FlowCorrespondence | FlowObligation
)

func (f Flow) String() string {
	var names []string
	if f&FlowGeneral != 0 {
		names = append(names, "general")
	}
	if f&FlowCorrespondence != 0 {
		names = append(names, "correspondence")
	}
	if f&FlowObligation != 0 {
		names = append(names, "obligation")
	}
	return strings.Join(names, ",")
}

// Status is an immutable registry entry.
type Status struct {
	Code     Code   `json:"code" yaml:"code"`
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Flows    Flow   `json:"flows" yaml:"flows"`
	Terminal bool   `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Belongs reports whether the status takes part in flow.
func (s Status) Belongs(flow Flow) bool {
	return s.Flows&flow != 0
}

var registry = []Status{
	{Code: NaoIniciado, Key: "NAO_INICIADO", Label: "Not Started", Flows: FlowObligation},
	{Code: Pendente, Key: "PENDENTE", Label: "Pending", Flows: FlowObligation},
	{Code: EmAndamento, Key: "EM_ANDAMENTO", Label: "In Progress", Flows: FlowObligation},
	{Code: Atrasada, Key: "ATRASADA", Label: "Overdue", Flows: FlowObligation},
	{Code: EmValidacaoRegulatorio, Key: "EM_VALIDACAO_REGULATORIO", Label: "In Regulatory Validation", Flows: FlowObligation},
	{Code: NaoAplicavelSuspensa, Key: "NAO_APLICAVEL_SUSPENSA", Label: "Not Applicable / Suspended", Flows: FlowObligation, Terminal: true},
	{Code: Recebido, Key: "RECEBIDO", Label: "Received", Flows: FlowGeneral},
	{Code: PreAnalise, Key: "PRE_ANALISE", Label: "Pre-Analysis", Flows: FlowGeneral},
	{Code: EmAnaliseAreaTecnica, Key: "EM_ANALISE_AREA_TECNICA", Label: "Technical Area Analysis", Flows: FlowGeneral},
	{Code: EmAnaliseGerenteRegulatorio, Key: "EM_ANALISE_GERENTE_REGULATORIO", Label: "Regulatory Manager Review", Flows: FlowGeneral | FlowObligation},
	{Code: EmAprovacao, Key: "EM_APROVACAO", Label: "In Approval", Flows: FlowShared},
	{Code: AnaliseRegulatoria, Key: "ANALISE_REGULATORIA", Label: "Regulatory Analysis", Flows: FlowShared},
	{Code: EmChancelamento, Key: "EM_CHANCELAMENTO", Label: "In Notarization", Flows: FlowShared},
	{Code: EmAssinaturaDiretoria, Key: "EM_ASSINATURA_DIRETORIA", Label: "Awaiting Board Signature", Flows: FlowShared},
	{Code: Concluido, Key: "CONCLUIDO", Label: "Concluded", Flows: FlowShared, Terminal: true},
	{Code: Arquivado, Key: "ARQUIVADO", Label: "Archived", Flows: FlowGeneral, Terminal: true},
	{Code: EmElaboracao, Key: "EM_ELABORACAO", Label: "Drafting Correspondence", Flows: FlowCorrespondence},
	{Code: AprovacaoTramitacao, Key: "APROVACAO_TRAMITACAO", Label: "Routing Approved", Flows: FlowShared},
}

var (
	byCode = map[Code]*Status{}
	byKey  = map[string]*Status{}
)

func init() {
	for i := range registry {
		byCode[registry[i].Code] = &registry[i]
		byKey[registry[i].Key] = &registry[i]
	}
}

// All returns a copy of the registry in code order.
func All() []Status {
	return append([]Status(nil), registry...)
}

// Lookup returns the registry entry for code.
func Lookup(code Code) (Status, bool) {
	s, ok := byCode[code]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

// Parse resolves a symbolic key (case-insensitive) or a numeric id.
func Parse(value string) (Code, error) {
	value = strings.TrimSpace(value)
	if s, ok := byKey[strings.ToUpper(value)]; ok {
		return s.Code, nil
	}
	var id int
	if _, err := fmt.Sscanf(value, "%d", &id); err == nil {
		if _, ok := byCode[Code(id)]; ok {
			return Code(id), nil
		}
	}
	return Unknown, fmt.Errorf("unknown status %q", value)
}

// Valid reports whether c is a registered code.
func (c Code) Valid() bool {
	_, ok := byCode[c]
	return ok
}

// Key returns the symbolic key, or an empty string for unregistered codes.
func (c Code) Key() string {
	if s, ok := byCode[c]; ok {
		return s.Key
	}
	return ""
}

// Label returns the user-facing label.
func (c Code) Label() string {
	if s, ok := byCode[c]; ok {
		return s.Label
	}
	return ""
}

func (c Code) String() string {
	if key := c.Key(); key != "" {
		return key
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Terminal reports whether no further routing is admitted.
func (c Code) Terminal() bool {
	if s, ok := byCode[c]; ok {
		return s.Terminal
	}
	return false
}

// Execution reports whether the assigned area is still executing the
// obligation.
func (c Code) Execution() bool {
	switch c {
	case NaoIniciado, Pendente, EmAndamento, Atrasada:
		return true
	}
	return false
}

// Is reports whether c matches any of the given codes.
func (c Code) Is(codes ...Code) bool {
	for _, candidate := range codes {
		if c == candidate {
			return true
		}
	}
	return false
}
