package bot

import (
	"context"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jrys/pkg/fortune"
	"jrys/pkg/logger"
)

// 失败时回复用户的固定文案
const (
	ReplyDataFailed       = "运势数据加载失败，请稍后再试～"
	ReplyBackgroundFailed = "获取背景图片失败，请稍后再试～"
	ReplyAvatarFailed     = "获取头像失败，请稍后再试～"
	ReplyRenderFailed     = "生成图片失败，请稍后再试～"
)

// DispatchState 一条消息的处理归属，命令优先于关键词，避免重复触发
type DispatchState int

const (
	Unhandled DispatchState = iota
	HandledByCommand
	HandledByKeyword
)

// 触发词集合
var (
	commandTriggers = []string{"/jrys", "/今日运势", "/运势"}
	keywordTriggers = map[string]struct{}{
		"jrys": {},
		"今日运势": {},
		"运势":   {},
	}
)

// Request 宿主框架转入的一条消息
type Request struct {
	UserID   string
	Nickname string
	Text     string
	State    DispatchState
}

// Reply 插件的回复：成功带图片路径与清理函数，失败带文案，二者只有其一
type Reply struct {
	ImagePath string
	Cleanup   func()
	Text      string
}

// AvatarSource 头像获取抽象
type AvatarSource interface {
	Avatar(ctx context.Context, userID string) (string, error)
}

// BackgroundSource 背景图获取抽象，cleanup为true表示用完要删。
// 背景选取自带随机性，不接入按用户和日期播种的随机流
type BackgroundSource interface {
	Pick(ctx context.Context) (path string, cleanup bool, err error)
}

// PosterRenderer 海报合成抽象
type PosterRenderer interface {
	Render(entry fortune.Entry, date time.Time, avatarPath, backgroundPath string, rng *rand.Rand) (string, error)
}

// Plugin 今日运势消息处理器
type Plugin struct {
	catalog        *fortune.Catalog
	avatars        AvatarSource
	backgrounds    BackgroundSource
	renderer       PosterRenderer
	keywordEnabled bool
	now            func() time.Time
}

// NewPlugin 创建插件
func NewPlugin(catalog *fortune.Catalog, avatars AvatarSource, backgrounds BackgroundSource, renderer PosterRenderer, keywordEnabled bool) *Plugin {
	return &Plugin{
		catalog:        catalog,
		avatars:        avatars,
		backgrounds:    backgrounds,
		renderer:       renderer,
		keywordEnabled: keywordEnabled,
		now:            time.Now,
	}
}

// Dispatch 判定消息的触发方式。
// 命令形式优先；关键词只在命令未命中且开关开启时精确匹配。
func (p *Plugin) Dispatch(req *Request) DispatchState {
	if req.State != Unhandled {
		return req.State
	}

	text := strings.TrimSpace(req.Text)
	for _, cmd := range commandTriggers {
		if text == cmd || strings.HasPrefix(text, cmd+" ") {
			req.State = HandledByCommand
			return req.State
		}
	}

	if p.keywordEnabled {
		if _, ok := keywordTriggers[text]; ok {
			req.State = HandledByKeyword
			return req.State
		}
	}
	return Unhandled
}

// Handle 处理一条消息。未触发返回nil；触发后必定返回回复，
// 任何内部失败都转换为固定文案而不是向上抛错。
func (p *Plugin) Handle(ctx context.Context, req *Request) *Reply {
	if p.Dispatch(req) == Unhandled {
		return nil
	}

	logger.Info("处理运势请求",
		zap.String("user_id", req.UserID),
		zap.String("nickname", req.Nickname))

	return p.generate(ctx, req.UserID, p.now())
}

// generate 执行一次海报生成，头像与背景并行获取
func (p *Plugin) generate(ctx context.Context, userID string, now time.Time) *Reply {
	rng := fortune.NewRand(fortune.Seed(userID, now))

	entry, err := fortune.Select(p.catalog, rng)
	if err != nil {
		logger.Error("运势抽取失败", zap.String("user_id", userID), zap.Error(err))
		return &Reply{Text: ReplyDataFailed}
	}

	var (
		avatarPath    string
		bgPath        string
		bgCleanup     bool
		avatarErr     error
		backgroundErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		avatarPath, avatarErr = p.avatars.Avatar(gctx, userID)
		return nil
	})
	g.Go(func() error {
		bgPath, bgCleanup, backgroundErr = p.backgrounds.Pick(gctx)
		return nil
	})
	g.Wait()

	cleanupBackground := func() {
		if bgCleanup && bgPath != "" {
			os.Remove(bgPath)
		}
	}

	if backgroundErr != nil {
		logger.Error("背景图获取失败", zap.String("user_id", userID), zap.Error(backgroundErr))
		return &Reply{Text: ReplyBackgroundFailed}
	}
	if avatarErr != nil {
		logger.Error("头像获取失败", zap.String("user_id", userID), zap.Error(avatarErr))
		cleanupBackground()
		return &Reply{Text: ReplyAvatarFailed}
	}

	posterPath, err := p.renderer.Render(entry, now, avatarPath, bgPath, rng)
	if err != nil {
		logger.Error("海报渲染失败", zap.String("user_id", userID), zap.Error(err))
		cleanupBackground()
		return &Reply{Text: ReplyRenderFailed}
	}

	return &Reply{
		ImagePath: posterPath,
		Cleanup: func() {
			os.Remove(posterPath)
			cleanupBackground()
		},
	}
}

// Generate 按指定日期生成海报，供HTTP接口与定时任务复用
func (p *Plugin) Generate(ctx context.Context, userID string, date time.Time) *Reply {
	return p.generate(ctx, userID, date)
}

// Entry 只取文案不渲染图片
func (p *Plugin) Entry(userID string, date time.Time) (fortune.Entry, error) {
	rng := fortune.NewRand(fortune.Seed(userID, date))
	return fortune.Select(p.catalog, rng)
}
