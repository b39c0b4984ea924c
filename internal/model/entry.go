package model

// ==================== 状态常量 ====================

const (
	// 提取条目状态
	EntryStatusIdle       = "idle"       // 已创建，等待用户手动触发（图片条目）
	EntryStatusProcessing = "processing" // 提取中
	EntryStatusCompleted  = "completed"  // 提取完成
	EntryStatusError      = "error"      // 提取失败，可重试

	// 条目来源模式
	EntryModeImage   = "image"
	EntryModeKeyword = "keyword"
)

// ==================== 内存模型 ====================
// Entry 与其嵌套的 SupplierMatch 只存活于进程内存，
// 进程重启即丢失，不做任何持久化。

// Entry 一次提取单元（一张图片或一个关键词）
type Entry struct {
	ID       string `json:"id"`       // 创建时生成，永不变更
	FileName string `json:"fileName"` // 原始文件名或关键词原文

	// 二者互斥：图片条目只填 OriginalImage，关键词条目只填 SourcingKeywords
	OriginalImage    string `json:"originalImage"`    // base64 data-URI，关键词条目为空
	SourcingKeywords string `json:"sourcingKeywords"` // 用户输入或网关归一化后的关键词

	Status  string            `json:"status"`
	Results []SupplierMatch   `json:"results"`
	Sources []GroundingSource `json:"sources"`
	Error   string            `json:"error,omitempty"` // 仅在 error 状态下有值，保留网关原始报错

	CreatedAt int64 `json:"createdAt"` // Unix 秒，供清理任务判断存活时间
}

// SupplierMatch 网关返回的一条候选供应商列表
type SupplierMatch struct {
	ID               string   `json:"id"`
	SourceURL        string   `json:"sourceUrl"`
	ResultImage      string   `json:"resultImage"`
	AdditionalImages []string `json:"additionalImages"`
	OriginalName     string   `json:"originalName"`
	SeoName          string   `json:"seoName"`
	Category         string   `json:"category"`
	EstimatedPrice   string   `json:"estimatedPrice"`
	MOQ              string   `json:"moq"`
	Description      string   `json:"description"`
	Material         string   `json:"material,omitempty"`
	Specifications   string   `json:"specifications,omitempty"`
	LeadTime         string   `json:"leadTime,omitempty"`
	SupplyCapacity   string   `json:"supplyCapacity,omitempty"`
	PackagingDetails string   `json:"packagingDetails,omitempty"`

	FeatureHighlights     []string `json:"featureHighlights,omitempty"`
	FactoryCertifications []string `json:"factoryCertifications,omitempty"`

	// 本地选中标记，仅影响导出范围，不随导出快照回写
	IsSelected bool `json:"isSelected"`
}

// GroundingSource 网关联网检索的出处
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Mode 根据创建时的互斥字段判断条目模式
func (e *Entry) Mode() string {
	if e.OriginalImage != "" {
		return EntryModeImage
	}
	return EntryModeKeyword
}
