// Package attachment classifies obligation attachments by document kind.
// The kind alone drives every attachment related permission check, so callers
// must use the predicates below instead of comparing kinds ad hoc.
package attachment

import (
	"strings"
	"time"
)

// Kind is the document kind of an attachment.
type Kind string

const (
	EvidenceFile   Kind = "EVIDENCE_FILE"
	EvidenceLink   Kind = "EVIDENCE_LINK"
	Correspondence Kind = "CORRESPONDENCE"
	Protocol       Kind = "PROTOCOL"
	Other          Kind = "OTHER"
)

// legacy single letter document type codes
var legacyKinds = map[string]Kind{
	"E": EvidenceFile,
	"L": EvidenceLink,
	"C": Correspondence,
	"P": Protocol,
	"O": Other,
}

// Attachment is a document linked to an obligation.
type Attachment struct {
	ID            string    `json:"id"`
	ObligationID  string    `json:"obligationId"`
	Kind          Kind      `json:"kind"`
	ResponsibleID string    `json:"responsibleId,omitempty"`
	Name          string    `json:"name"`
	Path          string    `json:"path,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Clone returns a shallow copy.
func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	ret := *a
	return &ret
}

// ParseKind normalises a kind name or legacy code. Unknown values map to Other.
func ParseKind(value string) Kind {
	value = strings.ToUpper(strings.TrimSpace(value))
	if k, ok := legacyKinds[value]; ok {
		return k
	}
	switch Kind(value) {
	case EvidenceFile, EvidenceLink, Correspondence, Protocol, Other:
		return Kind(value)
	}
	return Other
}

// Classify returns the document kind of a.
func Classify(a *Attachment) Kind {
	if a == nil {
		return Other
	}
	return ParseKind(string(a.Kind))
}

// Evidence reports whether k proves fulfilment (file or link).
func (k Kind) Evidence() bool {
	return k == EvidenceFile || k == EvidenceLink
}

// HasKind reports whether any attachment is of one of kinds.
func HasKind(attachments []*Attachment, kinds ...Kind) bool {
	for _, a := range attachments {
		actual := Classify(a)
		for _, k := range kinds {
			if actual == k {
				return true
			}
		}
	}
	return false
}

// HasEvidence reports whether an evidence file or link is attached.
func HasEvidence(attachments []*Attachment) bool {
	return HasKind(attachments, EvidenceFile, EvidenceLink)
}

// HasCorrespondence reports whether a correspondence is attached.
func HasCorrespondence(attachments []*Attachment) bool {
	return HasKind(attachments, Correspondence)
}

// Filter returns attachments matching any of kinds; no kinds returns all.
func Filter(attachments []*Attachment, kinds ...Kind) []*Attachment {
	if len(kinds) == 0 {
		return append([]*Attachment(nil), attachments...)
	}
	var ret []*Attachment
	for _, a := range attachments {
		if HasKind([]*Attachment{a}, kinds...) {
			ret = append(ret, a)
		}
	}
	return ret
}
