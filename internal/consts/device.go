package consts

// ILI9341 コマンド（データシートより）
const (
	CmdSwReset   = 0x01 // ソフトウェアリセット
	CmdSleepOut  = 0x11 // スリープ解除
	CmdDisplayOn = 0x29 // 表示オン
	CmdColAddr   = 0x2A // 列アドレス設定 (CASET)
	CmdPageAddr  = 0x2B // ページアドレス設定 (PASET)
	CmdMemWrite  = 0x2C // メモリ書き込み (RAMWR)
	CmdMadCtl    = 0x36 // メモリアクセス制御
	CmdPixFmt    = 0x3A // ピクセルフォーマット (COLMOD)

	PixFmt16Bit = 0x55 // RGB565
)

// MADCTL のビット
const (
	MadMY  = 0x80 // 行アドレス反転
	MadMX  = 0x40 // 列アドレス反転
	MadMV  = 0x20 // 行列交換
	MadBGR = 0x08 // BGR 順
)

// FT6336U レジスタ
const (
	FT6336Addr = 0x38 // I2C アドレス

	RegDevMode  = 0x00 // デバイスモード
	RegTDStatus = 0x02 // 接触点数（下位4ビット）。続いて1点ごとに XH, XL, YH, YL, WEIGHT, MISC
	RegChipID   = 0xA3 // チップID

	TouchRegLen = 6  // 1点あたりのレジスタ数
	ScanLen     = 13 // TD_STATUS から2点目の MISC まで
	MaxContacts = 2
)
