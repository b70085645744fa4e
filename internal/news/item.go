package news

// Item 聚合管道输出的统一结构，JSON 字段即对外 wire 格式。
// Timestamp 为 epoch 毫秒，0 表示“时间未知”而非“现在”。
type Item struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	MobileURL string  `json:"mobileUrl"`
	Author    string  `json:"author"`
	Content   string  `json:"content"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Hot       float64 `json:"hot,omitempty"`
	Cover     string  `json:"cover,omitempty"`
}

// Candidate 列表阶段解析出的条目雏形，作为详情富化的输入。
// RawTime 保留上游原始时间表示（字符串或数字），由 timeparse 统一归一。
type Candidate struct {
	ID        string
	Title     string
	URL       string
	MobileURL string
	Author    string
	Summary   string
	RawTime   any
	Hot       float64
	Cover     string
}

// Detail 详情页解析产物。空字段表示该页未提供，合并时回退到列表数据。
type Detail struct {
	Title   string
	Author  string
	Body    string
	URL     string
	RawTime any
}

// Envelope 管道对外的信封：生成时间（东八区）、列表是否命中缓存、条目列表。
type Envelope struct {
	UpdateTime string `json:"updateTime"`
	FromCache  bool   `json:"fromCache"`
	Data       []Item `json:"data"`
}
