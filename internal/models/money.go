package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roofdash/internal/logger"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（保留 2 位小数，允许为负）
type Money struct {
	decimal.Decimal

	// 读库时无法解析的原始值
	malformed    string
	hasMalformed bool
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromInt 从整数创建金额
func NewMoneyFromInt(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

// ZeroMoney 零金额
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// Plus 金额相加
func (m Money) Plus(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Add(other.Decimal))
}

// Minus 金额相减
func (m Money) Minus(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Sub(other.Decimal))
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			m.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
// 非数值内容按 0 处理，不中断整批读取；原始值由 AfterFind 钩子记录告警。
func (m *Money) Scan(value interface{}) error {
	m.malformed, m.hasMalformed = "", false
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	var parsed decimal.Decimal
	if err := parsed.Scan(value); err != nil {
		m.Decimal = decimal.Zero
		m.hasMalformed = true
		switch raw := value.(type) {
		case []byte:
			m.malformed = string(raw)
		default:
			m.malformed = fmt.Sprint(raw)
		}
		return nil
	}
	m.Decimal = parsed.Round(2)
	return nil
}

// Malformed 返回读库时无法解析的原始值
func (m Money) Malformed() (string, bool) {
	return m.malformed, m.hasMalformed
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

type moneyColumn struct {
	name  string
	value Money
}

func warnMalformedAmounts(table string, recordID uint, columns ...moneyColumn) {
	for _, column := range columns {
		raw, ok := column.value.Malformed()
		if !ok {
			continue
		}
		logger.Warnw("ledger_amount_malformed",
			"table", table,
			"record_id", recordID,
			"column", column.name,
			"raw_value", raw,
		)
	}
}
