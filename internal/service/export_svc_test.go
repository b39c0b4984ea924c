package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
	"sourcing_dev_v1_202608/pkg/utils"
)

// ==================== 测试辅助 ====================

func setupExportTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.SyncProfile{}, &model.AppSetting{}, &model.ExportRecord{})
	return db
}

type exportFixture struct {
	store      repository.EntryStore
	profileSvc *ProfileService
	history    repository.HistoryRepository
	svc        *ExportService
}

func setupExport(t *testing.T, imageURL, productURL string) *exportFixture {
	db := setupExportTestDB(t)

	profileRepo := repository.NewProfileRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	profileSvc := NewProfileService(profileRepo, settingRepo)

	ctx := context.Background()
	if err := profileSvc.EnsureSeed(ctx); err != nil {
		t.Fatalf("种入配置失败: %v", err)
	}
	active, err := profileSvc.GetActive(ctx)
	if err != nil {
		t.Fatalf("读取活动配置失败: %v", err)
	}
	active.Name = "测试渠道"
	active.ImageApiUrl = imageURL
	active.ProductApiUrl = productURL
	active.ApiToken = "token-123"
	active.CategoryID = 10
	active.SubCategoryID = 20
	active.ChildCategoryID = 30
	active.SellerID = 7
	if err := profileSvc.Update(ctx, active); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	store := repository.NewEntryStore()
	history := repository.NewHistoryRepository(db)
	return &exportFixture{
		store:      store,
		profileSvc: profileSvc,
		history:    history,
		svc:        NewExportService(store, profileSvc, history, utils.NewSyncClient()),
	}
}

// seedSelectedEntry 放入一个带选中候选的完成条目，返回条目 ID
func seedSelectedEntry(store repository.EntryStore, originalImage string, matches ...model.SupplierMatch) string {
	entry := &model.Entry{
		ID:            "entry-1",
		FileName:      "steel water bottle",
		OriginalImage: originalImage,
		Status:        model.EntryStatusCompleted,
		Results:       matches,
		CreatedAt:     time.Now().Unix(),
	}
	store.Insert(entry)
	return entry.ID
}

// ==================== 解析测试 ====================

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$12.50 USD", 12.5},
		{"N/A", 0},
		{"100", 100},
		{"", 0},
		// 区间价保留全部数字和点后不是合法小数，按 0 处理
		{"¥2.30-3.50", 0},
	}
	for _, c := range cases {
		if got := ParsePrice(c.in); got != c.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseMOQ(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"500 units", 500},
		{"", 1},
		{"MOQ: 2 pcs", 2},
		{"no number", 1},
	}
	for _, c := range cases {
		if got := ParseMOQ(c.in); got != c.want {
			t.Errorf("ParseMOQ(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// ==================== 导出测试 ====================

func TestExportSelected_ProfileIncomplete(t *testing.T) {
	fix := setupExport(t, "", "")

	// 种子配置有默认端点，清空后应快速失败
	active, _ := fix.profileSvc.GetActive(context.Background())
	active.ImageApiUrl = ""
	active.ApiToken = ""
	fix.profileSvc.Update(context.Background(), active)

	_, err := fix.svc.ExportSelected(context.Background())
	assert.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestExportSelected_SequentialCalls(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex
	var names []string

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		if cur > atomic.LoadInt32(&maxInFlight) {
			atomic.StoreInt32(&maxInFlight, cur)
		}
		time.Sleep(20 * time.Millisecond)

		var body struct {
			ProductName string   `json:"product_name"`
			Images      []string `json:"images"`
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		mu.Lock()
		names = append(names, body.ProductName)
		mu.Unlock()

		atomic.AddInt32(&inFlight, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	fix := setupExport(t, imageSrv.URL, "")
	seedSelectedEntry(fix.store, "",
		model.SupplierMatch{ID: "m1", SeoName: "Bottle A", ResultImage: "https://img/1.jpg", EstimatedPrice: "$1", MOQ: "1", IsSelected: true},
		model.SupplierMatch{ID: "m2", SeoName: "Bottle B", ResultImage: "https://img/2.jpg", EstimatedPrice: "$2", MOQ: "2", IsSelected: true},
		model.SupplierMatch{ID: "m3", SeoName: "Bottle C", ResultImage: "https://img/3.jpg", EstimatedPrice: "$3", MOQ: "3", IsSelected: true},
	)

	summary, err := fix.svc.ExportSelected(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	// N 个选中候选 = N 次调用，严格一个在途，按选择顺序
	if summary.SucceededCount != 3 {
		t.Errorf("成功数 = %d, want 3", summary.SucceededCount)
	}
	if atomic.LoadInt32(&maxInFlight) != 1 {
		t.Errorf("并发在途 = %d, 导出必须串行", maxInFlight)
	}
	assert.Equal(t, []string{"Bottle A", "Bottle B", "Bottle C"}, names)
}

func TestExportSelected_ImageListOrderAndDedup(t *testing.T) {
	var gotImages []string
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		gotImages = body.Images
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	fix := setupExport(t, imageSrv.URL, "")
	seedSelectedEntry(fix.store, "data:image/jpeg;base64,ORIG",
		model.SupplierMatch{
			ID: "m1", SeoName: "Bottle", EstimatedPrice: "$1", MOQ: "1", IsSelected: true,
			ResultImage:      "https://img/main.jpg",
			AdditionalImages: []string{"https://img/a.jpg", "", "https://img/main.jpg", "https://img/b.jpg"},
		},
	)

	if _, err := fix.svc.ExportSelected(context.Background()); err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	// 顺序：原图 -> 主图 -> 附图；去重、滤空
	want := []string{"data:image/jpeg;base64,ORIG", "https://img/main.jpg", "https://img/a.jpg", "https://img/b.jpg"}
	assert.Equal(t, want, gotImages)
}

func TestExportSelected_MetadataFailureDoesNotGate(t *testing.T) {
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	// 元数据端点永远 500
	productSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer productSrv.Close()

	fix := setupExport(t, imageSrv.URL, productSrv.URL)
	seedSelectedEntry(fix.store, "",
		model.SupplierMatch{ID: "m1", SeoName: "Bottle", ResultImage: "https://img/1.jpg", EstimatedPrice: "$5.00", MOQ: "10", IsSelected: true},
	)

	summary, err := fix.svc.ExportSelected(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	// 成败只看图片同步
	if summary.SucceededCount != 1 || summary.FailedCount != 0 {
		t.Errorf("summary = %+v, 元数据失败不应计入", summary)
	}
}

func TestExportSelected_ImageFailureSkipsCandidate(t *testing.T) {
	var calls int32
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	fix := setupExport(t, imageSrv.URL, "")
	seedSelectedEntry(fix.store, "",
		model.SupplierMatch{ID: "m1", SeoName: "Rejected", ResultImage: "https://img/1.jpg", EstimatedPrice: "$1", MOQ: "1", IsSelected: true},
		model.SupplierMatch{ID: "m2", SeoName: "Accepted", ResultImage: "https://img/2.jpg", EstimatedPrice: "$2", MOQ: "2", IsSelected: true},
	)

	summary, err := fix.svc.ExportSelected(context.Background())
	if err != nil {
		t.Fatalf("单候选失败不应中断整批: %v", err)
	}
	if summary.SucceededCount != 1 || summary.FailedCount != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// 只有成功的候选落历史
	records, _ := fix.history.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("历史条数 = %d, want 1", len(records))
	}
	if records[0].ProductName != "Accepted" {
		t.Errorf("历史记录 = %s", records[0].ProductName)
	}
}

func TestExportSelected_MetadataPayload(t *testing.T) {
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	var meta map[string]interface{}
	var gotAuth string
	productSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &meta)
		w.WriteHeader(http.StatusCreated)
	}))
	defer productSrv.Close()

	fix := setupExport(t, imageSrv.URL, productSrv.URL)
	seedSelectedEntry(fix.store, "",
		model.SupplierMatch{
			ID: "m1", SeoName: "Steel Bottle", ResultImage: "https://img/1.jpg",
			AdditionalImages: []string{"https://img/2.jpg"},
			EstimatedPrice:   "$12.50 USD", MOQ: "500 units",
			Description: "Premium bottle.", IsSelected: true,
		},
	)

	if _, err := fix.svc.ExportSelected(context.Background()); err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, 12.5, meta["price"])
	assert.Equal(t, float64(500), meta["minimum_order"])
	assert.Equal(t, float64(10), meta["category_id"])
	assert.Equal(t, float64(7), meta["seller_id"])

	// 描述：正文 <p> + 每图一段 <img>
	desc := meta["description"].(string)
	assert.Contains(t, desc, "<p>Premium bottle.</p>")
	assert.Contains(t, desc, `<img src="https://img/1.jpg"`)
	assert.Contains(t, desc, `<img src="https://img/2.jpg"`)
}

// ==================== 端到端场景 ====================

func TestEndToEnd_KeywordToHistory(t *testing.T) {
	var imageCalls int32
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&imageCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer imageSrv.Close()

	fix := setupExport(t, imageSrv.URL, "")

	// 关键词条目走完整提取编排
	gw := &fakeGateway{}
	extractSvc := NewExtractService(fix.store, gw)
	ids := extractSvc.SubmitKeywords("steel water bottle")
	entry := waitForStatus(t, extractSvc, ids[0], model.EntryStatusCompleted)
	if len(entry.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(entry.Results))
	}

	// 选中第一条候选并导出
	if err := extractSvc.ToggleSelection(entry.ID, entry.Results[0].ID); err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	summary, err := fix.svc.ExportSelected(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	if summary.SucceededCount != 1 {
		t.Errorf("成功数 = %d, want 1", summary.SucceededCount)
	}
	if atomic.LoadInt32(&imageCalls) != 1 {
		t.Errorf("图片端点调用 = %d, want 1", imageCalls)
	}

	records, _ := fix.history.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("历史条数 = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Status != model.ExportStatusSuccess {
		t.Errorf("status = %s", rec.Status)
	}
	if rec.Price != ParsePrice(entry.Results[0].EstimatedPrice) {
		t.Errorf("price = %v", rec.Price)
	}

	// 快照可回读为完整候选
	var snap model.SupplierMatch
	if err := json.Unmarshal(rec.Snapshot, &snap); err != nil {
		t.Fatalf("快照解析失败: %v", err)
	}
	if snap.SeoName != entry.Results[0].SeoName {
		t.Errorf("快照 seoName = %s", snap.SeoName)
	}
}
