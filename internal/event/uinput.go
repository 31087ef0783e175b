package event

// uinput の定数（uinput.h, input-event-codes.h より）
const (
	MaxNameSize = 80 // デバイス名の最大サイズ
	AbsSize     = 64 // 絶対座標の配列サイズ

	DevCreate  = 0x5501     // デバイス作成用のIOCTL
	DevDestroy = 0x5502     // デバイス破棄用のIOCTL
	SetEvBit   = 0x40045564 // イベントビット設定用のIOCTL
	SetKeyBit  = 0x40045565 // キービット設定用のIOCTL
	SetAbsBit  = 0x40045567 // 絶対座標ビット設定用のIOCTL
	SetPropBit = 0x4004556e // プロパティビット設定用のIOCTL

	PropDirect = 0x01 // 画面と一体のタッチデバイス
	BusVirtual = 0x06 // 仮想バス
)

// InputID はデバイス識別子を表す構造体
type InputID struct {
	Bustype uint16 // バスタイプ
	Vendor  uint16 // ベンダーID
	Product uint16 // 製品ID
	Version uint16 // バージョン
}

// UserDev はuinputユーザーデバイスの設定を表す構造体
type UserDev struct {
	Name       [MaxNameSize]byte // デバイス名
	ID         InputID           // デバイス識別子
	EffectsMax uint32            // 最大エフェクト数
	Absmax     [AbsSize]int32    // 絶対座標の最大値
	Absmin     [AbsSize]int32    // 絶対座標の最小値
	Absfuzz    [AbsSize]int32    // 絶対座標のファジー値
	Absflat    [AbsSize]int32    // 絶対座標のフラット値
}
