package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
)

// UintList 无符号整数数组类型，用于存储团队成员ID集合
type UintList []uint

// Value 实现 driver.Valuer 接口
func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	payload, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 实现 sql.Scanner 接口
func (l *UintList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = UintList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*l = UintList{}
		return nil
	}
	if len(raw) == 0 {
		*l = UintList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]uint)(l))
}

// Contains 判断是否包含指定ID
func (l UintList) Contains(id uint) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}

// Sorted 返回去重并升序排列的副本
func (l UintList) Sorted() UintList {
	seen := make(map[uint]struct{}, len(l))
	result := make(UintList, 0, len(l))
	for _, item := range l {
		if item == 0 {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
