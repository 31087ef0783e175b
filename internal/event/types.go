package event

import "syscall"

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Abs = 0x03 // 絶対座標イベント

	AbsX            = 0x00 // X軸の絶対座標
	AbsY            = 0x01 // Y軸の絶対座標
	AbsMtSlot       = 0x2f // マルチタッチスロット
	AbsMtPositionX  = 0x35 // マルチタッチのX座標
	AbsMtPositionY  = 0x36 // マルチタッチのY座標
	AbsMtTrackingId = 0x39 // タッチ追跡用ID
	AbsMtPressure   = 0x3a // タッチ圧力

	SynReport = 0     // イベント報告の同期
	BtnTouch  = 0x14a // タッチイベント
)

// ioctl 番号
const (
	EVIOCGRAB = 0x40044590 // デバイスの排他制御
)

// Event は入力イベントを表す構造体
type Event struct {
	Time  syscall.Timeval // イベント発生時刻
	Type  uint16          // イベントタイプ
	Code  uint16          // イベントコード
	Value int32           // イベント値
}
