package domain

import "math/rand/v2"

// Operator is the arithmetic operation of a math challenge.
type Operator string

const (
	OpAddition    Operator = "addition"
	OpSubtraction Operator = "subtraction"
)

// Challenge is a generated two-operand arithmetic puzzle used as an extra
// login/signup verification factor. It is attempt-scoped and never persisted
// or reused across attempts.
type Challenge struct {
	Operand1 int      `json:"operand1"`
	Operand2 int      `json:"operand2"`
	Operator Operator `json:"operator"`
	Answer   int      `json:"answer"`
}

// NewChallenge draws two operands uniformly from [1,100] and an operator
// uniformly from {addition, subtraction}. A negative answer is legal.
func NewChallenge(rng *rand.Rand) Challenge {
	c := Challenge{
		Operand1: rng.IntN(100) + 1,
		Operand2: rng.IntN(100) + 1,
	}
	if rng.IntN(2) == 0 {
		c.Operator = OpAddition
		c.Answer = c.Operand1 + c.Operand2
	} else {
		c.Operator = OpSubtraction
		c.Answer = c.Operand1 - c.Operand2
	}
	return c
}

// Check compares a submitted answer as an integer against the expected one.
func (c Challenge) Check(answer int) bool {
	return answer == c.Answer
}
