package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"parking-system/internal/clock"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// appliedTTL 每日已套用事件集合的保留時間，用來忽略重送
const appliedTTL = 2 * 24 * time.Hour

type ClassOccupancy struct {
	VehicleClass model.VehicleClass `json:"vehicle_type"`
	Total        int                `json:"total"`
	Occupied     int                `json:"occupied"`
	Free         int                `json:"free"`
}

type BoardSnapshot struct {
	Date    string           `json:"date"`
	Classes []ClassOccupancy `json:"classes"`
	Revenue decimal.Decimal  `json:"revenue"`
	Exits   int              `json:"exits"`
}

// OccupancyBoard 顯示用的即時看板，配車一律以資料庫為準
type OccupancyBoard interface {
	// 預熱：以資料庫狀態覆寫看板
	WarmUp(ctx context.Context, class model.VehicleClass, total, occupied int) error
	// 套用一筆停車事件 (Lua 腳本確保原子性)，重複的事件回傳 false
	Apply(ctx context.Context, event *model.ParkingEvent) (bool, error)
	Snapshot(ctx context.Context) (*BoardSnapshot, error)
}

type RedisOccupancyBoard struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisOccupancyBoard(client *redis.Client, clk clock.Clock) OccupancyBoard {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &RedisOccupancyBoard{client: client, clock: clk}
}

func boardKey(class model.VehicleClass) string {
	return fmt.Sprintf("parking:board:%s", class)
}

func revenueKey(day time.Time) string {
	return fmt.Sprintf("parking:revenue:%s", day.UTC().Format(time.DateOnly))
}

// appliedKey 依事件發生日分桶，當日過後不再寫入，TTL 到期即釋放
func appliedKey(day time.Time) string {
	return fmt.Sprintf("parking:board:applied:%s", day.UTC().Format(time.DateOnly))
}

func (b *RedisOccupancyBoard) WarmUp(ctx context.Context, class model.VehicleClass, total, occupied int) error {
	if !class.IsValid() {
		return apperrors.ErrUnknownVehicleClass
	}
	if total < 0 || occupied < 0 || occupied > total {
		return fmt.Errorf("invalid board counts for %s: total=%d occupied=%d", class, total, occupied)
	}
	return b.client.HSet(ctx, boardKey(class), map[string]interface{}{
		"total":    total,
		"occupied": occupied,
	}).Err()
}

var applyScript = redis.NewScript(`
	-- KEYS: board, revenue, applied
	local board_key = KEYS[1]
	local revenue_key = KEYS[2]
	local applied_key = KEYS[3]

	local event_id = ARGV[1]
	local delta = tonumber(ARGV[2])
	local cents = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	-- 1. 看板未預熱
	local info = redis.call('HMGET', board_key, 'total', 'occupied')
	if not info[1] or not info[2] then
		return -1
	end

	-- 2. 重送的事件不重複計算
	if event_id ~= '' then
		if redis.call('SADD', applied_key, event_id) == 0 then
			return 0
		end
		if redis.call('TTL', applied_key) < 0 then
			redis.call('EXPIRE', applied_key, ttl)
		end
	end

	-- 3. 占用數維持在 0 與總數之間
	local total = tonumber(info[1])
	local occupied = tonumber(info[2]) + delta
	if occupied < 0 then occupied = 0 end
	if occupied > total then occupied = total end
	redis.call('HSET', board_key, 'occupied', occupied)

	-- 4. 出場時累計當日營收
	if delta < 0 then
		redis.call('HINCRBY', revenue_key, 'cents', cents)
		redis.call('HINCRBY', revenue_key, 'exits', 1)
	end

	return 1
`)

func (b *RedisOccupancyBoard) Apply(ctx context.Context, event *model.ParkingEvent) (bool, error) {
	if event == nil || !event.VehicleClass.IsValid() {
		return false, apperrors.ErrUnknownVehicleClass
	}

	var delta int
	switch event.Type {
	case model.EventVehicleIn:
		delta = 1
	case model.EventVehicleOut:
		delta = -1
	default:
		return false, fmt.Errorf("unknown parking event type %q", event.Type)
	}

	// 營收以分為單位存整數
	cents := event.Price.Shift(2).Round(0).IntPart()
	keys := []string{boardKey(event.VehicleClass), revenueKey(event.OccurredAt), appliedKey(event.OccurredAt)}

	code, err := applyScript.Run(ctx, b.client, keys, event.ID, delta, cents, int(appliedTTL.Seconds())).Int()
	if err != nil {
		return false, err
	}

	switch code {
	case 1:
		return true, nil
	case 0:
		return false, nil
	case -1:
		return false, apperrors.ErrBoardNotWarmed
	default:
		return false, errors.New("unexpected result")
	}
}

func (b *RedisOccupancyBoard) Snapshot(ctx context.Context) (*BoardSnapshot, error) {
	today := b.clock.Now()
	snapshot := &BoardSnapshot{
		Date:    today.UTC().Format(time.DateOnly),
		Classes: make([]ClassOccupancy, 0, 2),
		Revenue: decimal.Zero,
	}

	for _, class := range model.VehicleClasses() {
		result, err := b.client.HGetAll(ctx, boardKey(class)).Result()
		if err != nil {
			return nil, err
		}
		if len(result) == 0 {
			return nil, apperrors.ErrBoardNotWarmed
		}

		total, err := strconv.Atoi(result["total"])
		if err != nil {
			return nil, fmt.Errorf("invalid total: %v", err)
		}
		occupied, err := strconv.Atoi(result["occupied"])
		if err != nil {
			return nil, fmt.Errorf("invalid occupied: %v", err)
		}
		snapshot.Classes = append(snapshot.Classes, ClassOccupancy{
			VehicleClass: class,
			Total:        total,
			Occupied:     occupied,
			Free:         total - occupied,
		})
	}

	revenue, err := b.client.HGetAll(ctx, revenueKey(today)).Result()
	if err != nil {
		return nil, err
	}
	if v, ok := revenue["cents"]; ok {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid revenue: %v", err)
		}
		snapshot.Revenue = decimal.New(cents, -2)
	}
	if v, ok := revenue["exits"]; ok {
		if snapshot.Exits, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid exits: %v", err)
		}
	}

	return snapshot, nil
}
