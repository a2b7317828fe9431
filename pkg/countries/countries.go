// Package countries 提供依語系排序的國家清單。跟配額邏輯無關的小工具：
// unicode 排序不便宜，所以結果以語系為 key 做兩層快取
// （行程內 map + Redis，30 天 TTL）。
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-quota-availability/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const cacheTTL = 30 * 24 * time.Hour

// Country 一筆國家項目：ISO 3166-1 alpha-2 代碼與語系化名稱
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CachedCountries struct {
	client *redis.Client

	mu    sync.RWMutex
	lists map[string][]Country
}

// NewCachedCountries 建立快取清單。client 可為 nil，此時只用行程內快取。
func NewCachedCountries(client *redis.Client) *CachedCountries {
	return &CachedCountries{
		client: client,
		lists:  make(map[string][]Country),
	}
}

func cacheKey(locale string) string {
	return fmt.Sprintf("countries:all:%s", locale)
}

// List 回傳指定語系下依名稱排序的國家清單
func (c *CachedCountries) List(ctx context.Context, locale string) ([]Country, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	key := cacheKey(locale)

	c.mu.RLock()
	cached, ok := c.lists[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if list, ok := c.fromShared(ctx, key); ok {
		c.store(key, list)
		return list, nil
	}

	list := build(tag)
	c.store(key, list)
	c.toShared(ctx, key, list)
	return list, nil
}

func (c *CachedCountries) store(key string, list []Country) {
	c.mu.Lock()
	c.lists[key] = list
	c.mu.Unlock()
}

func (c *CachedCountries) fromShared(ctx context.Context, key string) ([]Country, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.WithComponent("countries").Warn("read shared country cache failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var list []Country
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.WithComponent("countries").Warn("decode shared country cache failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return list, true
}

func (c *CachedCountries) toShared(ctx context.Context, key string, list []Country) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		logger.WithComponent("countries").Warn("write shared country cache failed", zap.String("key", key), zap.Error(err))
	}
}

func build(tag language.Tag) []Country {
	namer := display.Regions(tag)
	list := make([]Country, 0, len(regionCodes))
	for _, code := range regionCodes {
		name := code
		if region, err := language.ParseRegion(code); err == nil && namer != nil {
			if n := namer.Name(region); n != "" {
				name = n
			}
		}
		list = append(list, Country{Code: code, Name: name})
	}

	col := collate.New(tag)
	sort.SliceStable(list, func(i, j int) bool {
		return col.CompareString(list[i].Name, list[j].Name) < 0
	})
	return list
}

// ISO 3166-1 alpha-2，officially assigned
var regionCodes = strings.Fields(`
	AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ
	BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ
	CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ
	DE DJ DK DM DO DZ EC EE EG EH ER ES ET
	FI FJ FK FM FO FR GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY
	HK HM HN HR HT HU ID IE IL IM IN IO IQ IR IS IT
	JE JM JO JP KE KG KH KI KM KN KP KR KW KY KZ
	LA LB LC LI LK LR LS LT LU LV LY
	MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ
	NA NC NE NF NG NI NL NO NP NR NU NZ OM
	PA PE PF PG PH PK PL PM PN PR PS PT PW PY QA
	RE RO RS RU RW SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ
	TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ
	UA UG UM US UY UZ VA VC VE VG VI VN VU WF WS YE YT ZA ZM ZW
`)
