// Package checklist tracks per-agent onboarding checklist state.
//
// A checklist is created once per agent from a Template (Initialize) and
// afterwards only changes through Toggle. Progress is derived on demand and
// never stored.
package checklist
