// Package policy provides the configurable parts of the obligation rules: the
// conditioning closure mode, the APROVACAO_TRAMITACAO comment guard and
// declarative CEL rules that can further restrict any action.
package policy
