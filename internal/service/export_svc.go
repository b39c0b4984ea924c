package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

// ErrProfileIncomplete 活动配置缺少图片端点或凭证
// 控制器捕获后引导前端打开设置页，整批导出在任何网络调用前终止
var ErrProfileIncomplete = errors.New("当前渠道配置缺少图片同步端点或 API 凭证")

// ==================== 服务实现 ====================

// ExportService 导出编排服务
// 严格串行逐候选导出：限制对目标端点的并发压力，
// 也让历史记录的时间顺序与选择顺序一致
type ExportService struct {
	store       repository.EntryStore
	profileSvc  *ProfileService
	historyRepo repository.HistoryRepository
	client      *resty.Client
}

// NewExportService 创建导出编排服务
func NewExportService(
	store repository.EntryStore,
	profileSvc *ProfileService,
	historyRepo repository.HistoryRepository,
	client *resty.Client,
) *ExportService {
	return &ExportService{
		store:       store,
		profileSvc:  profileSvc,
		historyRepo: historyRepo,
		client:      client,
	}
}

// ==================== 结果结构 ====================

// ExportSummary 一批导出的聚合结果
type ExportSummary struct {
	SucceededCount int `json:"succeededCount"`
	FailedCount    int `json:"failedCount"`
}

// ==================== 对外方法 ====================

// ExportSelected 导出当前全部选中候选
// 单个候选失败只记日志并计入失败数，不中断整批
func (s *ExportService) ExportSelected(ctx context.Context) (*ExportSummary, error) {
	profile, err := s.profileSvc.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取活动配置失败: %v", err)
	}
	if profile.ImageApiUrl == "" || profile.ApiToken == "" {
		return nil, ErrProfileIncomplete
	}

	pairs := s.store.SelectedPairs()
	summary := &ExportSummary{}

	for _, pair := range pairs {
		if err := s.exportOne(ctx, profile, pair); err != nil {
			summary.FailedCount++
			log.Printf("[导出] 候选 %s (%s) 导出失败: %v", pair.Match.ID, pair.Match.SeoName, err)
			continue
		}
		summary.SucceededCount++
	}

	log.Printf("[导出] 批次完成: 成功 %d, 失败 %d", summary.SucceededCount, summary.FailedCount)
	return summary, nil
}

// ==================== 内部方法 ====================

// exportOne 单候选两阶段同步：先图片，再元数据
// 成败只看图片同步的 HTTP 状态，元数据调用不计入成败口径
func (s *ExportService) exportOne(ctx context.Context, profile *model.SyncProfile, pair repository.SelectedPair) error {
	images := buildImageList(pair)

	// 阶段一：图片同步
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+profile.ApiToken).
		SetBody(map[string]interface{}{
			"product_name": pair.Match.SeoName,
			"images":       images,
		}).
		Post(profile.ImageApiUrl)
	if err != nil {
		return fmt.Errorf("图片同步请求失败: %v", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("图片同步被拒绝 [%d]: %s", resp.StatusCode(), resp.String())
	}

	price := ParsePrice(pair.Match.EstimatedPrice)

	// 阶段二：元数据同步（配置了端点才发，结果不影响成败）
	if profile.ProductApiUrl != "" {
		metaResp, err := s.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+profile.ApiToken).
			SetBody(map[string]interface{}{
				"name":                 pair.Match.SeoName,
				"category_id":          profile.CategoryID,
				"sub_category_id":      profile.SubCategoryID,
				"child_category_id":    profile.ChildCategoryID,
				"price":                price,
				"minimum_order":        ParseMOQ(pair.Match.MOQ),
				"description":          buildHTMLDescription(pair.Match),
				"seller_id":            profile.SellerID,
				"unite":                profile.Unite,
				"weight":               profile.Weight,
				"delivery_day_min":     profile.DeliveryDayMin,
				"delivery_day_max":     profile.DeliveryDayMax,
				"warranty_day":         profile.WarrantyDay,
				"warranty_information": profile.WarrantyInfo,
			}).
			Post(profile.ProductApiUrl)
		if err != nil {
			log.Printf("[导出] 候选 %s 元数据同步请求失败: %v", pair.Match.ID, err)
		} else if metaResp.StatusCode() < 200 || metaResp.StatusCode() >= 300 {
			log.Printf("[导出] 候选 %s 元数据同步被拒绝 [%d]", pair.Match.ID, metaResp.StatusCode())
		}
	}

	// 落历史（全量快照）
	snapshot, _ := json.Marshal(pair.Match)
	record := &model.ExportRecord{
		ID:           uuid.NewString(),
		ProductName:  pair.Match.SeoName,
		ProfileName:  profile.Name,
		ImageCount:   len(images),
		Status:       model.ExportStatusSuccess,
		Price:        price,
		CategoryPath: fmt.Sprintf("%d/%d/%d", profile.CategoryID, profile.SubCategoryID, profile.ChildCategoryID),
		Snapshot:     datatypes.JSON(snapshot),
	}
	if err := s.historyRepo.Append(ctx, record); err != nil {
		// 远端已同步成功，历史写入失败只记日志
		log.Printf("[导出] 写入历史失败: %v", err)
	}

	return nil
}

// buildImageList 组装图片列表：父条目原图 + 主图 + 附图
// 保序去重、过滤空串
func buildImageList(pair repository.SelectedPair) []string {
	raw := make([]string, 0, 2+len(pair.Match.AdditionalImages))
	raw = append(raw, pair.Entry.OriginalImage, pair.Match.ResultImage)
	raw = append(raw, pair.Match.AdditionalImages...)

	seen := make(map[string]struct{}, len(raw))
	images := make([]string, 0, len(raw))
	for _, img := range raw {
		if img == "" {
			continue
		}
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		images = append(images, img)
	}
	return images
}

// buildHTMLDescription 正文包 <p>，每张图再各追加一段 <img>
func buildHTMLDescription(match model.SupplierMatch) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(match.Description)
	b.WriteString("</p>")

	gallery := make([]string, 0, 1+len(match.AdditionalImages))
	if match.ResultImage != "" {
		gallery = append(gallery, match.ResultImage)
	}
	gallery = append(gallery, match.AdditionalImages...)

	for _, img := range gallery {
		if img == "" {
			continue
		}
		b.WriteString(fmt.Sprintf(`<p><img src="%s" alt="%s"></p>`, img, match.SeoName))
	}
	return b.String()
}

// ==================== 解析工具 ====================

// ParsePrice 从价格字符串解析数值
// 只保留数字和小数点，解析不出就按 0
func ParsePrice(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseMOQ 从起订量字符串解析整数
// 只保留数字，解析不出就按 1
func ParseMOQ(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 1
	}
	return n
}
