package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/pattarachai/medisched/agent/contract"
	convx "github.com/pattarachai/medisched/agent/conversation"
)

type fakeClassifier struct {
	decisions []contractx.RouteDecision
	err       error
	calls     int
}

func (f *fakeClassifier) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.RouteDecision, error) {
	f.calls++
	if f.err != nil {
		return contractx.RouteDecision{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.decisions) {
		idx = len(f.decisions) - 1
	}
	return f.decisions[idx], nil
}

func newTestState(t *testing.T) *convx.State {
	t.Helper()
	st, err := convx.NewState(1000760, "is a dentist available on 02-01-2024?")
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return st
}

func TestDecideNextRoutesAndCommits(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{decisions: []contractx.RouteDecision{
		{Next: contractx.RouteInformation, Rationale: "availability question"},
	}}
	sup, err := New(fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newTestState(t)
	decision := sup.DecideNext(context.Background(), st)

	if decision.Next != contractx.RouteInformation {
		t.Fatalf("Next = %s, want %s", decision.Next, contractx.RouteInformation)
	}
	if st.PendingRoute != string(contractx.RouteInformation) {
		t.Fatalf("PendingRoute = %q", st.PendingRoute)
	}
	if st.Rationale != "availability question" {
		t.Fatalf("Rationale = %q", st.Rationale)
	}
	if st.HopCount != 1 {
		t.Fatalf("HopCount = %d, want 1", st.HopCount)
	}
}

func TestDecideNextFirstHopSideEffects(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{decisions: []contractx.RouteDecision{
		{Next: contractx.RouteInformation},
	}}
	sup, err := New(fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newTestState(t)
	sup.DecideNext(context.Background(), st)

	if st.LastUserQuery != "is a dentist available on 02-01-2024?" {
		t.Fatalf("LastUserQuery = %q", st.LastUserQuery)
	}
	if len(st.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(st.History))
	}
	last := st.History[1]
	if last.Role != convx.RoleUser || !strings.Contains(last.Content, "identification number is 1000760") {
		t.Fatalf("unexpected identity message: %+v", last)
	}

	// Second hop must not re-append the identity message.
	st.Append(convx.Message{Role: convx.RoleWorker, Worker: "information", Content: "No availability"})
	sup.DecideNext(context.Background(), st)
	for _, msg := range st.History[2:] {
		if strings.Contains(msg.Content, "identification number") {
			t.Fatalf("identity message repeated: %+v", st.History)
		}
	}
}

func TestDecideNextBudgetExhaustion(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{decisions: []contractx.RouteDecision{
		{Next: contractx.RouteInformation},
	}}
	sup, err := New(fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newTestState(t)
	for hop := 1; hop < HopBudget; hop++ {
		decision := sup.DecideNext(context.Background(), st)
		if decision.Next == contractx.RouteTerminate {
			t.Fatalf("terminated early at hop %d", hop)
		}
	}

	decision := sup.DecideNext(context.Background(), st)
	if decision.Next != contractx.RouteTerminate {
		t.Fatalf("hop %d decision = %s, want terminate", HopBudget, decision.Next)
	}
	if decision.Rationale != budgetExhaustedRationale {
		t.Fatalf("rationale = %q", decision.Rationale)
	}
	if fake.calls != HopBudget-1 {
		t.Fatalf("classifier consulted %d times, want %d", fake.calls, HopBudget-1)
	}
}

func TestDecideNextClassifierErrorTerminatesWithApology(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{err: errors.New("model unavailable")}
	sup, err := New(fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newTestState(t)
	decision := sup.DecideNext(context.Background(), st)

	if decision.Next != contractx.RouteTerminate {
		t.Fatalf("Next = %s, want terminate", decision.Next)
	}
	if !strings.Contains(decision.Rationale, "classification failed") {
		t.Fatalf("rationale = %q", decision.Rationale)
	}
	if len(st.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(st.History))
	}
	if st.History[1].Role != convx.RoleAssistant || st.History[1].Content != classificationApology {
		t.Fatalf("unexpected apology message: %+v", st.History[1])
	}
}

func TestWithHopBudgetOverride(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{decisions: []contractx.RouteDecision{
		{Next: contractx.RouteBooking},
	}}
	sup, err := New(fake, WithHopBudget(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newTestState(t)
	if decision := sup.DecideNext(context.Background(), st); decision.Next != contractx.RouteBooking {
		t.Fatalf("hop 1 decision = %s", decision.Next)
	}
	if decision := sup.DecideNext(context.Background(), st); decision.Next != contractx.RouteTerminate {
		t.Fatalf("hop 2 decision = %s, want terminate", decision.Next)
	}
}

func TestNewRequiresClassifier(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil classifier")
	}
}
