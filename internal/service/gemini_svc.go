package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sourcing_dev_v1_202608/internal/model"
)

// ==================== 配置 ====================

// GeminiConfig 提取网关配置
type GeminiConfig struct {
	ApiKey  string
	Model   string
	BaseURL string // 便于测试时指向 httptest，默认官方地址
	Timeout time.Duration
}

// ==================== 服务 ====================

// SourcingGateway 提取网关接口（便于测试替换）
type SourcingGateway interface {
	ProcessProductImage(ctx context.Context, base64Image, mimeType string) (*SourcingResult, error)
	ProcessProductKeyword(ctx context.Context, keyword string) (*SourcingResult, error)
}

// GeminiService Gemini 提取网关客户端
type GeminiService struct {
	Config     *GeminiConfig
	HttpClient *http.Client
}

// NewGeminiService 创建提取网关客户端
func NewGeminiService(cfg *GeminiConfig) *GeminiService {
	if cfg.Model == "" {
		cfg.Model = "gemini-3-pro-preview"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &GeminiService{
		Config:     cfg,
		HttpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ==================== 结果结构 ====================

// SourcingResult 一次提取调用的归一化结果
type SourcingResult struct {
	Keywords string
	Matches  []model.SupplierMatch
	Sources  []model.GroundingSource
}

// ==================== 提示词与出参约束 ====================

const systemInstruction = `You are an Elite Global Procurement Intelligence.
Your objective is to provide exhaustive e-commerce data for product sourcing.

EXTRACTION PROTOCOL:
1. IMAGES: Extract 1 primary image and 4+ gallery images per variant. Prefer direct .jpg/.png links from Alibaba/AliExpress/Amazon.
2. NARRATIVE: The "description" must be a long-form professional listing copy (250+ words). Detail materials, target markets, dimensions, and manufacturing quality.
3. DATA FIDELITY: Ensure MOQ, Price, and Lead Times are realistic based on the grounded source.
4. OUTPUT: Strictly valid JSON following the schema.`

// productSchema 结构化出参约束，与前端时代的响应契约逐字段对齐
func productSchema() map[string]interface{} {
	str := map[string]interface{}{"type": "STRING"}
	strArray := map[string]interface{}{"type": "ARRAY", "items": str}

	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"sourcingKeywords": str,
			"matches": map[string]interface{}{
				"type": "ARRAY",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"sourceUrl":             str,
						"resultImage":           str,
						"additionalImages":      strArray,
						"originalName":          str,
						"seoName":               str,
						"category":              str,
						"estimatedPrice":        str,
						"moq":                   str,
						"description":           str,
						"material":              str,
						"specifications":        str,
						"leadTime":              str,
						"supplyCapacity":        str,
						"packagingDetails":      str,
						"featureHighlights":     strArray,
						"factoryCertifications": strArray,
					},
					"required": []string{"sourceUrl", "resultImage", "seoName", "description", "estimatedPrice", "moq"},
				},
			},
		},
		"required": []string{"sourcingKeywords", "matches"},
	}
}

// ==================== 对外方法 ====================

// ProcessProductImage 以图搜品
func (s *GeminiService) ProcessProductImage(ctx context.Context, base64Image, mimeType string) (*SourcingResult, error) {
	prompt := "DEEP VISUAL EXTRACTION: Identify this product and find 5 high-quality supplier matches from Alibaba and AliExpress. Extract deep narratives and multi-asset galleries."

	// data-URI 形式去掉前缀，只留纯 base64
	data := base64Image
	if idx := strings.Index(data, ","); idx >= 0 {
		data = data[idx+1:]
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []map[string]interface{}{
		{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      data,
			},
		},
		{"text": prompt},
	}
	return s.executeSourcingQuery(ctx, parts)
}

// ProcessProductKeyword 按关键词搜品
func (s *GeminiService) ProcessProductKeyword(ctx context.Context, keyword string) (*SourcingResult, error) {
	prompt := fmt.Sprintf(`DEEP SEARCH: Find 5 premium supplier listings for "%s". Extract exhaustive specs, narratives, and 4+ high-quality images per listing.`, keyword)

	parts := []map[string]interface{}{
		{"text": prompt},
	}
	return s.executeSourcingQuery(ctx, parts)
}

// ==================== 内部方法 ====================

// executeSourcingQuery 发起一次带联网检索的结构化生成调用
func (s *GeminiService) executeSourcingQuery(ctx context.Context, parts []map[string]interface{}) (*SourcingResult, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.Config.BaseURL, s.Config.Model, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": systemInstruction}},
		},
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"tools": []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   productSchema(),
		},
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.HttpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	return parseSourcingResponse(respBody)
}

// parseSourcingResponse 解析响应，提取结构化结果与检索出处
// 任何一步解析失败都是该次提取的硬失败，不做部分兜底
func parseSourcingResponse(respBody []byte) (*SourcingResult, error) {
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			GroundingMetadata struct {
				GroundingChunks []struct {
					Web struct {
						Title string `json:"title"`
						URI   string `json:"uri"`
					} `json:"web"`
				} `json:"groundingChunks"`
			} `json:"groundingMetadata"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("无生成结果")
	}

	// 提取 JSON 文本
	var jsonText string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				jsonText = part.Text
				break
			}
		}
		if jsonText != "" {
			break
		}
	}

	var payload struct {
		SourcingKeywords string                `json:"sourcingKeywords"`
		Matches          []model.SupplierMatch `json:"matches"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("数据解析失败，请尝试更具体的搜索: %v", err)
	}

	// 补全候选身份与默认值
	for i := range payload.Matches {
		payload.Matches[i].ID = fmt.Sprintf("res-%d-%s", i, uuid.NewString())
		payload.Matches[i].IsSelected = false
		if payload.Matches[i].AdditionalImages == nil {
			payload.Matches[i].AdditionalImages = []string{}
		}
	}

	// 提取检索出处
	sources := make([]model.GroundingSource, 0)
	for _, chunk := range geminiResp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = "Product Listing"
		}
		sources = append(sources, model.GroundingSource{Title: title, URI: chunk.Web.URI})
	}

	return &SourcingResult{
		Keywords: payload.SourcingKeywords,
		Matches:  payload.Matches,
		Sources:  sources,
	}, nil
}
