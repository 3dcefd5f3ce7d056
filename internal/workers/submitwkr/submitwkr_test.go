package submitwkr

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrsloottracker.dev/plugin-core/internal/auth"
	"osrsloottracker.dev/plugin-core/internal/dedup"
	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/normalizer"
	"osrsloottracker.dev/plugin-core/internal/settings"
	"osrsloottracker.dev/plugin-core/internal/submit"
	"osrsloottracker.dev/plugin-core/internal/transport"
)

type recordingClient struct {
	mu sync.Mutex

	dropBatches    []*transport.DropBatchPayload
	collectionLogs []*transport.CollectionLogPayload
	pets           []*transport.PetPayload

	deadlineDispatches int
}

func (c *recordingClient) SubmitDropBatch(ctx context.Context, p *transport.DropBatchPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := ctx.Deadline(); ok {
		c.deadlineDispatches++
	}
	c.dropBatches = append(c.dropBatches, p)
	return nil
}

func (c *recordingClient) SubmitCollectionLog(ctx context.Context, p *transport.CollectionLogPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectionLogs = append(c.collectionLogs, p)
	return nil
}

func (c *recordingClient) SubmitPet(ctx context.Context, p *transport.PetPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pets = append(c.pets, p)
	return nil
}

func (c *recordingClient) UploadScreenshot(ctx context.Context, png []byte, serverID string) (*transport.ScreenshotResult, error) {
	return &transport.ScreenshotResult{URL: "https://cdn.example/shot.png"}, nil
}

func (c *recordingClient) RecentDrops(ctx context.Context, limit int) ([]transport.RecentDrop, error) {
	return nil, nil
}

func (c *recordingClient) UserStats(ctx context.Context, rsn string) (*transport.UserStats, error) {
	return &transport.UserStats{}, nil
}

func (c *recordingClient) Servers(ctx context.Context) ([]transport.ServerInfo, error) {
	return nil, nil
}

func (c *recordingClient) ServerChannels(ctx context.Context, serverID string) ([]transport.ChannelInfo, error) {
	return nil, nil
}

func (c *recordingClient) ServerEvents(ctx context.Context, serverID string) ([]transport.EventInfo, error) {
	return nil, nil
}

func (c *recordingClient) ValidateToken(ctx context.Context, token string) (int, error) {
	return 200, nil
}

type stubItems struct{}

func (stubItems) PriceOf(itemID int) int   { return 1_000_000 }
func (stubItems) NameOf(itemID int) string { return "Dragon pickaxe" }

type noFollower struct{}

func (noFollower) FollowerName() (string, bool) { return "", false }

type noFrames struct{}

func (noFrames) CaptureFrame(ctx context.Context) <-chan host.FrameResult {
	out := make(chan host.FrameResult, 1)
	out <- host.FrameResult{Frame: &host.Frame{PNG: []byte{1}}}
	close(out)
	return out
}

func newTestWorker(t *testing.T, settingsDoc string) (*Worker, *recordingClient) {
	t.Helper()

	store := host.NewMemoryStore()
	require.NoError(t, store.Write("loottracker", settingsDoc))
	settingsSvc := settings.New(store, "loottracker")

	client := &recordingClient{}
	authManager := auth.NewManager(settingsSvc, client)
	require.NoError(t, authManager.CompleteLogin("tok", "123", "user#0"))

	orch := submit.NewOrchestrator(
		authManager,
		client,
		submit.NewScreenshotter(noFrames{}, client),
		submit.NewRecentDrops(50),
		submit.NewStatsRefresher(client),
	)

	w := &Worker{WorkerDeps: WorkerDeps{
		Bus:          host.NewBus(),
		Settings:     settingsSvc,
		Normalizer:   normalizer.New(stubItems{}),
		Dedup:        dedup.New(noFollower{}),
		Orchestrator: orch,
	}}
	return w, client
}

const destinationsDoc = `{
	"captureScreenshots": false,
	"dropDestinations": "[{\"serverId\":\"srv\",\"channels\":[{\"channelId\":\"drops\",\"minValue\":500000,\"acceptsValuableDrops\":true,\"acceptsCollectionLog\":true,\"acceptsPets\":true}]}]"
}`

func TestConsumeLootSignal(t *testing.T) {
	w, client := newTestWorker(t, destinationsDoc)

	err := w.consumeSignal(context.Background(), &host.LootSignal{
		PlayerName: "Zezima",
		SourceName: "King Black Dragon",
		Items:      []host.ItemStack{{ItemID: 11920, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, client.dropBatches, 1)
	assert.Equal(t, "King Black Dragon", client.dropBatches[0].MonsterName)
	assert.Equal(t, 1_000_000, client.dropBatches[0].TotalValue)
}

func TestConsumerImposesNoDispatchDeadline(t *testing.T) {
	// the screenshot wait can be arbitrarily long; a slow capture must not
	// cost the drop its submission
	w, client := newTestWorker(t, destinationsDoc)

	require.True(t, w.Bus.Publish(&host.LootSignal{
		PlayerName: "Zezima",
		SourceName: "King Black Dragon",
		Items:      []host.ItemStack{{ItemID: 11920, Quantity: 1}},
	}))
	w.Bus.Close()

	ch := make(chan error, 1)
	require.NoError(t, w.Consumer(context.Background(), ch))

	require.Len(t, client.dropBatches, 1)
	assert.Zero(t, client.deadlineDispatches)
}

func TestConsumeCollectionLogDeduplicates(t *testing.T) {
	w, client := newTestWorker(t, destinationsDoc)

	sig := &host.ChatSignal{
		Type:    host.ChatTypeGameMessage,
		Message: "New item added to your collection log: Ranger boots",
	}
	require.NoError(t, w.consumeSignal(context.Background(), sig))
	require.NoError(t, w.consumeSignal(context.Background(), sig))

	// the repeated line within the dedup window submits once
	require.Len(t, client.collectionLogs, 1)
	assert.Equal(t, "Ranger boots", client.collectionLogs[0].ItemName)
}

func TestConsumePetNamedFromCollectionLogFallback(t *testing.T) {
	w, client := newTestWorker(t, destinationsDoc)

	require.NoError(t, w.consumeSignal(context.Background(), &host.ChatSignal{
		Type:    host.ChatTypeGameMessage,
		Message: "New item added to your collection log: Pet chaos elemental",
	}))
	require.NoError(t, w.consumeSignal(context.Background(), &host.ChatSignal{
		Type:    host.ChatTypeGameMessage,
		Message: "You have a funny feeling like you're being followed.",
	}))

	require.Len(t, client.pets, 1)
	assert.Equal(t, "Pet chaos elemental", client.pets[0].PetName)
}

func TestConsumeRespectsTrackingToggles(t *testing.T) {
	doc := `{
		"trackLoot": false,
		"trackCollectionLog": false,
		"trackPets": false,
		"dropDestinations": "[{\"serverId\":\"srv\",\"channelIds\":[\"a\"]}]"
	}`
	w, client := newTestWorker(t, doc)

	require.NoError(t, w.consumeSignal(context.Background(), &host.LootSignal{
		PlayerName: "Zezima",
		Items:      []host.ItemStack{{ItemID: 1, Quantity: 1}},
	}))
	require.NoError(t, w.consumeSignal(context.Background(), &host.ChatSignal{
		Type:    host.ChatTypeGameMessage,
		Message: "New item added to your collection log: Mole claw",
	}))
	require.NoError(t, w.consumeSignal(context.Background(), &host.ChatSignal{
		Type:    host.ChatTypeGameMessage,
		Message: "You have a funny feeling like you're being followed.",
	}))

	assert.Zero(t, len(client.dropBatches)+len(client.collectionLogs)+len(client.pets))
}

func TestConsumeDropsNonQualifyingLoot(t *testing.T) {
	// channel floor is 500k; a 1m item qualifies, so use a doc with a high
	// floor instead
	doc := `{
		"captureScreenshots": false,
		"dropDestinations": "[{\"serverId\":\"srv\",\"channels\":[{\"channelId\":\"drops\",\"minValue\":5000000,\"acceptsValuableDrops\":true}]}]"
	}`
	w, client := newTestWorker(t, doc)

	require.NoError(t, w.consumeSignal(context.Background(), &host.LootSignal{
		PlayerName: "Zezima",
		Items:      []host.ItemStack{{ItemID: 1, Quantity: 1}},
	}))

	assert.Empty(t, client.dropBatches)
}

func TestConsumeIgnoresUnparseableSignals(t *testing.T) {
	w, client := newTestWorker(t, destinationsDoc)

	require.NoError(t, w.consumeSignal(context.Background(), &host.ChatSignal{
		Type:    "PUBLICCHAT",
		Message: "selling lobbies 150gp",
	}))

	assert.Zero(t, len(client.dropBatches)+len(client.collectionLogs)+len(client.pets))
}
