package protocol

// CardInfo 对外的牌面格式，如 {"suit":"hearts","rank":"2","value":15,"id":"card-38"}
type CardInfo struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
	ID    string `json:"id"`
}
