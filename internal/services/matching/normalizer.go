package matching

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one record as produced by the file parser: column name -> scalar.
type Row map[string]interface{}

// Role is a semantic field of a bank statement row.
type Role string

const (
	RoleIdentifier  Role = "identifier"
	RoleAmount      Role = "amount"
	RoleDate        Role = "date"
	RoleDescription Role = "description"
)

// RequiredRoles must be bound before a reconciliation can run.
var RequiredRoles = []Role{RoleIdentifier, RoleAmount, RoleDate}

var ErrUnboundRole = errors.New("column mapping role is not bound")

// ColumnMapping binds each role to a column name of the bank statement.
// An empty string means the role is unbound.
type ColumnMapping struct {
	Identifier  string `json:"identifier" yaml:"identifier"`
	Amount      string `json:"amount" yaml:"amount"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Column returns the column bound to role, or "" when unbound.
func (m ColumnMapping) Column(role Role) string {
	switch role {
	case RoleIdentifier:
		return m.Identifier
	case RoleAmount:
		return m.Amount
	case RoleDate:
		return m.Date
	case RoleDescription:
		return m.Description
	}
	return ""
}

// Validate reports the first required role that is unbound.
func (m ColumnMapping) Validate() error {
	for _, role := range RequiredRoles {
		if strings.TrimSpace(m.Column(role)) == "" {
			return fmt.Errorf("%w: %s", ErrUnboundRole, role)
		}
	}
	return nil
}

// IsZero reports whether no role is bound at all.
func (m ColumnMapping) IsZero() bool {
	return m == ColumnMapping{}
}

// Lookup returns the value under column. A nil value or an unknown column is absent.
func (r Row) Lookup(column string) (interface{}, bool) {
	if column == "" {
		return nil, false
	}
	v, ok := r[column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Field resolves role through the mapping. Unbound roles and missing cells are absent.
func Field(r Row, m ColumnMapping, role Role) (interface{}, bool) {
	return r.Lookup(m.Column(role))
}

// Text renders a cell the way identifiers are compared: strings verbatim,
// whole numbers without a fractional part, other floats in shortest form.
func Text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ParseMode selects how unparsable amount cells are treated.
type ParseMode int

const (
	// Lenient turns unparsable amounts into zero.
	Lenient ParseMode = iota
	// Strict rejects the run on the first unparsable amount.
	Strict
)

func (p ParseMode) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseModeFromString accepts "strict" or "lenient"; anything else is lenient.
func ParseModeFromString(s string) ParseMode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Lenient
}

func (p ParseMode) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ParseMode) UnmarshalText(b []byte) error {
	*p = ParseModeFromString(string(b))
	return nil
}

var ErrInvalidAmount = errors.New("invalid amount")

var amountReplacer = strings.NewReplacer(",", "", "$", "", "₹", "", "\u00a0", "", " ", "")

// ParseAmount coerces a cell to a decimal. Absent and empty cells are zero in
// both modes; other unparsable cells are zero in Lenient mode and an
// ErrInvalidAmount in Strict mode.
func ParseAmount(v interface{}, mode ParseMode) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	}

	s := strings.TrimSpace(Text(v))
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(amountReplacer.Replace(s))
	if err != nil {
		if mode == Strict {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, Text(v))
		}
		return decimal.Zero, nil
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
