package database

import (
	"fmt"

	apperrors "go-quota-availability/pkg/app_errors"
)

// GreatestFunc 後端提供的「兩值取大」SQL 聚合函數名稱。
// 票券代碼剩餘使用次數的加總 SUM(GREATEST(max_usages - redeemed, 0))
// 依賴此函數，啟動時依 engine 選定一次。
type GreatestFunc string

const (
	GreatestFuncGreatest GreatestFunc = "GREATEST"
	GreatestFuncMax      GreatestFunc = "MAX"
)

// SelectGreatestFunc 依資料庫引擎選擇聚合函數。
// 引擎不支援任何一種時為設定錯誤，直接失敗而非在每次查詢時報錯。
func SelectGreatestFunc(engine string) (GreatestFunc, error) {
	switch engine {
	case "postgres", "cockroachdb":
		return GreatestFuncGreatest, nil
	case "sqlite", "sqlite3":
		return GreatestFuncMax, nil
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedStore, engine)
}
