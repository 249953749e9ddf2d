package session

import (
	"strings"
	"testing"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

func TestNewSession(t *testing.T) {
	s := New()
	if s.Active || s.Round != 0 || s.TurnIndex != 0 || len(s.Combatants) != 0 {
		t.Errorf("expected empty lifecycle state, got %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("new session should be valid: %v", err)
	}
}

func TestSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Session)
		wantErr string
	}{
		{
			name:   "valid active",
			mutate: func(s *Session) {},
		},
		{
			name:    "turn index out of range",
			mutate:  func(s *Session) { s.TurnIndex = 5 },
			wantErr: "turn index",
		},
		{
			name:    "active with round zero",
			mutate:  func(s *Session) { s.Round = 0 },
			wantErr: "round >= 1",
		},
		{
			name: "unresolved initiative while active",
			mutate: func(s *Session) {
				s.Combatants[0].InitiativeKind = combatant.InitiativeRoll
			},
			wantErr: "unresolved initiative",
		},
		{
			name: "inactive with nonzero pointers",
			mutate: func(s *Session) {
				s.Active = false
			},
			wantErr: "round 0",
		},
		{
			name: "invalid combatant",
			mutate: func(s *Session) {
				s.Combatants[1].HP = -2
			},
			wantErr: "hp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := activeSession(t, 3)
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid session, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
