package domain

import (
	"math/rand/v2"
	"testing"
)

func TestNewChallenge_Distribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	sawAddition := false
	sawSubtraction := false

	for i := 0; i < 10000; i++ {
		c := NewChallenge(rng)

		if c.Operand1 < 1 || c.Operand1 > 100 {
			t.Fatalf("operand1 out of range: %d", c.Operand1)
		}
		if c.Operand2 < 1 || c.Operand2 > 100 {
			t.Fatalf("operand2 out of range: %d", c.Operand2)
		}

		switch c.Operator {
		case OpAddition:
			sawAddition = true
			if c.Answer != c.Operand1+c.Operand2 {
				t.Fatalf("addition answer mismatch: %d + %d != %d", c.Operand1, c.Operand2, c.Answer)
			}
		case OpSubtraction:
			sawSubtraction = true
			if c.Answer != c.Operand1-c.Operand2 {
				t.Fatalf("subtraction answer mismatch: %d - %d != %d", c.Operand1, c.Operand2, c.Answer)
			}
		default:
			t.Fatalf("unexpected operator: %q", c.Operator)
		}
	}

	if !sawAddition || !sawSubtraction {
		t.Errorf("expected both operators over 10000 draws, got addition=%v subtraction=%v", sawAddition, sawSubtraction)
	}
}

func TestChallenge_NegativeAnswerAccepted(t *testing.T) {
	c := Challenge{Operand1: 3, Operand2: 50, Operator: OpSubtraction, Answer: -47}

	if !c.Check(-47) {
		t.Error("expected negative answer to be accepted")
	}
	if c.Check(47) {
		t.Error("expected sign-flipped answer to be rejected")
	}
}

func TestChallenge_Check(t *testing.T) {
	c := Challenge{Operand1: 12, Operand2: 47, Operator: OpAddition, Answer: 59}

	if !c.Check(59) {
		t.Error("expected 59 to pass")
	}
	if c.Check(58) {
		t.Error("expected 58 to fail")
	}
}
