package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

func TestControlPlayer_NoDrift(t *testing.T) {
	ctx := newTestContext(t)
	v, _ := ctx.World.Velocities.Get(ctx.Res.Player)
	*v = Velocity(physics.V(120, -40))

	require.NoError(t, controlPlayer(ctx))
	require.NoError(t, integrateMovement(ctx))

	v, _ = ctx.World.Velocities.Get(ctx.Res.Player)
	assert.True(t, v.Vec().IsZero())
	pos, _ := ctx.World.Position(ctx.Res.Player)
	assert.Equal(t, physics.Zero, pos)
}

func TestControlPlayer_NormalizesIntent(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Input.Move = physics.V(3, 4)

	require.NoError(t, controlPlayer(ctx))
	require.NoError(t, integrateMovement(ctx))

	v, _ := ctx.World.Velocities.Get(ctx.Res.Player)
	assert.InDelta(t, 300, v.Vec().Length(), 1e-9)
	pos, _ := ctx.World.Position(ctx.Res.Player)
	assert.InDelta(t, 0.6*300/64, pos.X, 1e-9)
	assert.InDelta(t, 0.8*300/64, pos.Y, 1e-9)
}

func TestMissingPlayer(t *testing.T) {
	ctx := newTestContext(t)
	ctx.World.Registry.Destroy(ctx.Res.Player)

	for name, sys := range map[string]func(*Context) error{
		"control": controlPlayer,
		"aim":     aimWeapon,
		"steer":   steerEnemies,
		"cull":    cullEnemies,
		"defense": defendPlayer,
		"pickup":  collectGems,
		"rift":    openRifts,
	} {
		assert.ErrorIs(t, sys(ctx), ErrNoPlayer, name)
	}
}

func TestAimWeapon(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Input.Aim = physics.V(0, 100)

	require.NoError(t, aimWeapon(ctx))
	wt, _ := ctx.World.Transforms.Get(ctx.Res.Weapon)
	assert.InDelta(t, math.Pi/2, wt.Rotation, 1e-9)
	assert.InDelta(t, 0, wt.Position.X, 1e-9)
	assert.InDelta(t, 52, wt.Position.Y, 1e-9)

	// inside the dead zone the facing is kept
	ctx.Input.Aim = physics.V(3, 0)
	require.NoError(t, aimWeapon(ctx))
	wt, _ = ctx.World.Transforms.Get(ctx.Res.Weapon)
	assert.InDelta(t, math.Pi/2, wt.Rotation, 1e-9)
}

func TestFireWeapon_Cooldown(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Input.Aim = physics.V(100, 0)
	ctx.Input.Fire = true
	require.NoError(t, aimWeapon(ctx))

	require.NoError(t, fireWeapon(ctx))
	ctx.World.Commands.Apply()
	require.Equal(t, 1, ctx.World.Projectiles.Len())

	id, p, _ := ctx.World.Projectiles.First()
	pos, _ := ctx.World.Position(id)
	assert.InDelta(t, 72, pos.X, 1e-9)
	assert.Equal(t, pos, p.SpawnLocation)
	v, _ := ctx.World.Velocities.Get(id)
	assert.InDelta(t, 500, v.X, 1e-9)

	// 100ms at 64 Hz: six ticks still cooling down, the seventh fires
	for range 6 {
		require.NoError(t, fireWeapon(ctx))
	}
	ctx.World.Commands.Apply()
	assert.Equal(t, 1, ctx.World.Projectiles.Len())

	require.NoError(t, fireWeapon(ctx))
	ctx.World.Commands.Apply()
	assert.Equal(t, 2, ctx.World.Projectiles.Len())
}

func TestCullProjectiles(t *testing.T) {
	ctx := newTestContext(t)
	near := ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.Zero, physics.V(500, 0))
	far := ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.Zero, physics.V(500, 0))
	nt, _ := ctx.World.Transforms.Get(near)
	nt.Position = physics.V(700, 0)
	ft, _ := ctx.World.Transforms.Get(far)
	ft.Position = physics.V(700.5, 0)

	require.NoError(t, cullProjectiles(ctx))
	ctx.World.Commands.Apply()

	assert.True(t, ctx.World.Registry.Alive(near))
	assert.False(t, ctx.World.Registry.Alive(far))
}

func TestSteerEnemies(t *testing.T) {
	ctx := newTestContext(t)
	chaser := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(100, 0))
	onTop := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.Zero)
	pushed := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(0, 100))
	ctx.World.Knockbacks.Set(pushed, Knockback{Velocity: physics.V(0, 1280), Origin: physics.V(0, 100), Distance: 10})
	pv, _ := ctx.World.Velocities.Get(pushed)
	*pv = Velocity(physics.V(0, 1280))

	require.NoError(t, steerEnemies(ctx))

	v, _ := ctx.World.Velocities.Get(chaser)
	assert.InDelta(t, -100, v.X, 1e-9)
	assert.InDelta(t, 0, v.Y, 1e-9)

	v, _ = ctx.World.Velocities.Get(onTop)
	assert.True(t, v.Vec().IsZero(), "degenerate direction resolves to zero velocity")
	assert.False(t, math.IsNaN(v.X))

	v, _ = ctx.World.Velocities.Get(pushed)
	assert.Equal(t, Velocity(physics.V(0, 1280)), *v, "knocked back enemies are not steered")
}

func TestCullEnemies(t *testing.T) {
	ctx := newTestContext(t)
	edge := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(2000, 0))
	beyond := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(0, -2000.1))

	require.NoError(t, cullEnemies(ctx))
	ctx.World.Commands.Apply()

	assert.True(t, ctx.World.Registry.Alive(edge))
	assert.False(t, ctx.World.Registry.Alive(beyond))
}

func TestResolveProjectiles_SingleHit(t *testing.T) {
	ctx := newTestContext(t)
	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))
	shot := ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.V(30, 0), physics.V(500, 0))

	require.NoError(t, resolveProjectiles(ctx))

	h, _ := ctx.World.Healths.Get(enemy)
	assert.Equal(t, 1.0, h.Current)

	kb, ok := ctx.World.Knockbacks.Get(enemy)
	require.True(t, ok)
	assert.Equal(t, physics.V(50, 0), kb.Origin)
	assert.InDelta(t, 1280, kb.Velocity.X, 1e-9)
	assert.InDelta(t, 0, kb.Velocity.Y, 1e-9)
	assert.Equal(t, 10.0, kb.Distance)

	ctx.World.Commands.Apply()
	assert.False(t, ctx.World.Registry.Alive(shot))
	assert.True(t, ctx.World.Registry.Alive(enemy))
}

func TestResolveProjectiles_StopsAtFirstHit(t *testing.T) {
	ctx := newTestContext(t)
	first := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))
	second := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(55, 0))
	ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.V(52, 0), physics.V(0, 500))

	require.NoError(t, resolveProjectiles(ctx))

	h1, _ := ctx.World.Healths.Get(first)
	h2, _ := ctx.World.Healths.Get(second)
	assert.Equal(t, 1.0, h1.Current)
	assert.Equal(t, 2.0, h2.Current)
	assert.False(t, ctx.World.Knockbacks.Has(second))
}

func TestResolveProjectiles_EdgeContactMisses(t *testing.T) {
	ctx := newTestContext(t)
	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))
	// half extents 25 + 2.5: touching at exactly 27.5 is not an overlap
	ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.V(22.5, 0), physics.V(500, 0))

	require.NoError(t, resolveProjectiles(ctx))
	h, _ := ctx.World.Healths.Get(enemy)
	assert.Equal(t, 2.0, h.Current)
}

func TestResolveDeaths_Enemy(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Enemy.GemDropChance = 1 })
	killed := collect[EnemyKilled](t, ctx.Bus, EventEnemyKilled)

	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))
	h, _ := ctx.World.Healths.Get(enemy)
	h.Current = 0

	require.NoError(t, resolveDeaths(ctx))
	require.NoError(t, resolveDeaths(ctx), "a queued death is resolved once")
	ctx.World.Commands.Apply()

	assert.False(t, ctx.World.Registry.Alive(enemy))
	assert.Equal(t, 1, ctx.Res.Score)
	require.Len(t, *killed, 1)
	assert.True(t, (*killed)[0].GemDropped)

	require.Equal(t, 1, ctx.World.Gems.Len())
	gid, gem, _ := ctx.World.Gems.First()
	assert.Equal(t, 1.0, gem.Value)
	pos, _ := ctx.World.Position(gid)
	assert.Equal(t, physics.V(50, 0), pos)
}

func TestResolveDeaths_Player(t *testing.T) {
	ctx := newTestContext(t)
	died := collect[PlayerDied](t, ctx.Bus, EventPlayerDied)

	h, _ := ctx.World.Healths.Get(ctx.Res.Player)
	h.Current = -1

	require.NoError(t, resolveDeaths(ctx))
	ctx.World.Commands.Apply()

	assert.False(t, ctx.World.Registry.Alive(ctx.Res.Player))
	assert.Len(t, *died, 1)
	assert.Equal(t, 0, ctx.Res.Score)
}

func TestResolveDeaths_GemDropRate(t *testing.T) {
	const trials = 10_000
	ctx := newTestContext(t)
	ctx.Rand = rand.New(rand.NewPCG(42, 7))

	for i := range trials {
		id := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(float64(i%100), float64(i/100)))
		h, _ := ctx.World.Healths.Get(id)
		h.Current = 0
	}

	require.NoError(t, resolveDeaths(ctx))
	ctx.World.Commands.Apply()

	assert.Equal(t, trials, ctx.Res.Score)
	assert.Equal(t, 0, ctx.World.Enemies.Len())

	// σ = 0.005 for p = 0.5 and n = 10000; ±6σ
	rate := float64(ctx.World.Gems.Len()) / trials
	assert.InDelta(t, 0.5, rate, 0.03)
}

func TestKnockback_DisplacementBound(t *testing.T) {
	ctx := newTestContext(t)
	origin := physics.V(300, 0)
	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, origin)
	ctx.World.Knockbacks.Set(enemy, Knockback{Velocity: physics.V(1280, 0), Origin: origin, Distance: 10})

	overshoot := ctx.Config.Knockback.Speed * ctx.DT
	for tick := 0; tick < 10 && ctx.World.Knockbacks.Has(enemy); tick++ {
		require.NoError(t, integrateMovement(ctx))
		require.NoError(t, applyKnockback(ctx))

		pos, _ := ctx.World.Position(enemy)
		moved := physics.Distance(origin, pos)
		assert.LessOrEqual(t, moved, 10+overshoot)
		if ctx.World.Knockbacks.Has(enemy) {
			assert.Less(t, moved, 10.0, "still active only below the threshold")
		} else {
			assert.GreaterOrEqual(t, moved, 10.0, "removed once the threshold is reached")
		}
	}

	assert.False(t, ctx.World.Knockbacks.Has(enemy))
	v, _ := ctx.World.Velocities.Get(enemy)
	assert.True(t, v.Vec().IsZero())
}

func TestKnockback_SuppressesSteering(t *testing.T) {
	ctx := newTestContext(t)
	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(100, 0))
	ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.V(80, 0), physics.V(500, 0))

	require.NoError(t, resolveProjectiles(ctx))
	require.NoError(t, applyKnockback(ctx))
	require.NoError(t, steerEnemies(ctx))

	v, _ := ctx.World.Velocities.Get(enemy)
	assert.InDelta(t, 1280, v.X, 1e-9, "knockback velocity points away from the shooter")
}

func TestDefendPlayer_Invulnerability(t *testing.T) {
	ctx := newTestContext(t)
	health := collect[PlayerHealthChanged](t, ctx.Bus, EventPlayerHealthChanged)
	ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(10, 0))
	ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(-10, 0))

	require.NoError(t, defendPlayer(ctx))
	assert.Equal(t, 9.0, ctx.playerHealth(t).Current, "one hit per tick")
	assert.True(t, ctx.World.Invulnerables.Has(ctx.Res.Player))

	// 1s at 64 Hz
	for range 63 {
		require.NoError(t, defendPlayer(ctx))
		assert.Equal(t, 9.0, ctx.playerHealth(t).Current)
	}

	require.NoError(t, defendPlayer(ctx))
	assert.Equal(t, 8.0, ctx.playerHealth(t).Current)
	assert.True(t, ctx.World.Invulnerables.Has(ctx.Res.Player), "the window restarts")

	require.Len(t, *health, 2)
	assert.Equal(t, PlayerHealthChanged{Current: 8, Max: 10}, (*health)[1])
	assert.Equal(t, 8.0, ctx.Res.PlayerHealth.Current)
}

func TestDefendPlayer_NoContact(t *testing.T) {
	ctx := newTestContext(t)
	// exactly touching edges
	ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))

	require.NoError(t, defendPlayer(ctx))
	assert.Equal(t, 10.0, ctx.playerHealth(t).Current)
	assert.False(t, ctx.World.Invulnerables.Has(ctx.Res.Player))
}

func TestCollectGems(t *testing.T) {
	ctx := newTestContext(t)
	collected := collect[GemCollected](t, ctx.Bus, EventGemCollected)
	inside := ctx.World.SpawnGem(10, physics.V(74.9, 0), 2)
	edge := ctx.World.SpawnGem(10, physics.V(0, 75), 3)

	require.NoError(t, collectGems(ctx))
	require.NoError(t, collectGems(ctx), "a queued gem is not collected twice")
	ctx.World.Commands.Apply()

	assert.False(t, ctx.World.Registry.Alive(inside))
	assert.True(t, ctx.World.Registry.Alive(edge))
	assert.Equal(t, 2.0, ctx.Res.Experience)
	assert.Equal(t, []GemCollected{{Value: 2, Total: 2}}, *collected)
}

func TestOpenRifts(t *testing.T) {
	ctx := newTestContext(t)
	opened := collect[RiftOpened](t, ctx.Bus, EventRiftOpened)
	pt, _ := ctx.World.Transforms.Get(ctx.Res.Player)
	center := physics.V(100, -50)
	pt.Position = center

	ctx.DT = 3.9
	require.NoError(t, openRifts(ctx))
	assert.Empty(t, *opened)

	ctx.DT = 0.2
	require.NoError(t, openRifts(ctx))
	ctx.World.Commands.Apply()

	require.Equal(t, 1, ctx.World.Rifts.Len())
	id, r, _ := ctx.World.Rifts.First()
	assert.Equal(t, 5, r.Remaining)
	pos, _ := ctx.World.Position(id)
	assert.InDelta(t, 500, physics.Distance(center, pos), 1e-9)
	assert.Len(t, *opened, 1)
}

func TestOpenRifts_UniformAngle(t *testing.T) {
	const draws = 10000
	ctx := newTestContext(t)
	ctx.Rand = rand.New(rand.NewPCG(3, 5))
	opened := collect[RiftOpened](t, ctx.Bus, EventRiftOpened)
	center, ok := ctx.World.Position(ctx.Res.Player)
	require.True(t, ok)

	// the 4s interval fires exactly once per step
	ctx.DT = ctx.Config.Rift.Interval.Seconds()
	for range draws {
		require.NoError(t, openRifts(ctx))
	}
	require.Len(t, *opened, draws)

	var quadrants [4]int
	for _, o := range *opened {
		angle := o.Position.Sub(center).Angle()
		if angle < 0 {
			angle += 2 * math.Pi
		}
		quadrants[min(int(angle/(math.Pi/2)), 3)]++
	}

	// σ ≈ 43 per quadrant; ±6σ
	for q, n := range quadrants {
		assert.InDelta(t, draws/4, n, 260, "quadrant %d", q)
	}
}

func TestReleaseEnemies_Quota(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Rift.Quota = 3 })
	spawned := collect[EnemySpawned](t, ctx.Bus, EventEnemySpawned)
	rift := ctx.World.SpawnRift(ctx.Config.Rift, physics.V(0, 500))

	// one fire of the 2s timer per tick
	ctx.DT = 2
	for range 3 {
		require.True(t, ctx.World.Registry.Alive(rift))
		require.NoError(t, releaseEnemies(ctx))
		if r, ok := ctx.World.Rifts.Get(rift); ok {
			assert.GreaterOrEqual(t, r.Remaining, 0)
		}
		ctx.World.Commands.Apply()
	}

	assert.False(t, ctx.World.Registry.Alive(rift))
	assert.Equal(t, 3, ctx.World.Enemies.Len())
	require.Len(t, *spawned, 3)
	assert.Equal(t, 0, (*spawned)[2].Remaining)

	ctx.World.Enemies.Each(func(id models.EntityID, _ *Enemy) {
		pos, _ := ctx.World.Position(id)
		assert.Equal(t, physics.V(0, 500), pos)
	})
}

func TestReleaseEnemies_NeverBelowZero(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Rift.Quota = 2 })
	rift := ctx.World.SpawnRift(ctx.Config.Rift, physics.V(0, 500))

	// five fires in one tick, only two enemies left in the rift
	ctx.DT = 10
	require.NoError(t, releaseEnemies(ctx))
	r, _ := ctx.World.Rifts.Get(rift)
	assert.Equal(t, 0, r.Remaining)
	ctx.World.Commands.Apply()

	assert.Equal(t, 2, ctx.World.Enemies.Len())
	assert.False(t, ctx.World.Registry.Alive(rift))
}

func TestReleaseEnemies_EmptyQuota(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Rift.Quota = 0 })
	rift := ctx.World.SpawnRift(ctx.Config.Rift, physics.Zero)

	require.NoError(t, releaseEnemies(ctx))
	ctx.World.Commands.Apply()

	assert.False(t, ctx.World.Registry.Alive(rift))
	assert.Equal(t, 0, ctx.World.Enemies.Len())
}

func TestScenario_EnemyKilledByTwoShots(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Enemy.GemDropChance = 1 })
	enemy := ctx.World.SpawnEnemy(ctx.Config.Enemy, physics.V(50, 0))
	shoot := func() {
		ctx.World.SpawnProjectile(ctx.Config.Weapon, physics.V(40, 0), physics.V(500, 0))
		require.NoError(t, resolveProjectiles(ctx))
		require.NoError(t, defendPlayer(ctx))
		require.NoError(t, resolveDeaths(ctx))
		ctx.World.Commands.Apply()
	}

	shoot()
	h, _ := ctx.World.Healths.Get(enemy)
	assert.Equal(t, 1.0, h.Current)
	kb, ok := ctx.World.Knockbacks.Get(enemy)
	require.True(t, ok)
	assert.Equal(t, physics.V(50, 0), kb.Origin)
	assert.Equal(t, 10.0, ctx.playerHealth(t).Current, "edges touching at x=50 do not overlap")

	shoot()
	assert.False(t, ctx.World.Registry.Alive(enemy))
	assert.Equal(t, 1, ctx.Res.Score)
	gid, _, ok := ctx.World.Gems.First()
	require.True(t, ok)
	pos, _ := ctx.World.Position(gid)
	assert.Equal(t, physics.V(50, 0), pos)
}
