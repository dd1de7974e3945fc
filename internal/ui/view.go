package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasks-go/internal/client"
	"github.com/nibzard/tasks-go/internal/task"
)

var (
	accent  = lipgloss.Color("#667eea")
	success = lipgloss.Color("#48bb78")
	danger  = lipgloss.Color("#f56565")
	muted   = lipgloss.Color("#a0aec0")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(muted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(muted)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(success).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(danger).Padding(0, 1)
	onlineStyle   = lipgloss.NewStyle().Foreground(success)
	offlineStyle  = lipgloss.NewStyle().Foreground(danger)
)

var filterLabels = []struct {
	key    string
	filter task.Filter
	label  string
}{
	{"0", task.FilterAll, "Todas"},
	{"1", task.FilterPending, "Pendientes"},
	{"2", task.FilterCompleted, "Completadas"},
}

func writeTitle(b *strings.Builder, serverURL string, online bool) {
	b.WriteString(titleStyle.Render("Gestor de Tareas"))
	status := onlineStyle.Render("● en línea")
	if !online {
		status = offlineStyle.Render("● sin conexión")
	}
	b.WriteString("  " + status)
	if serverURL != "" {
		b.WriteString("  " + mutedStyle.Render(serverURL))
	}
	b.WriteString("\n\n")
}

func writeStats(b *strings.Builder, s task.Stats) {
	b.WriteString(fmt.Sprintf("  Total: %d  Pendientes: %d  Completadas: %d\n\n", s.Total, s.Pending, s.Completed))
}

func writeFilters(b *strings.Builder, current task.Filter) {
	b.WriteString(" ")
	for _, f := range filterLabels {
		label := fmt.Sprintf("%s %s", f.key, f.label)
		if f.filter == current {
			b.WriteString(activeTab.Render(label))
		} else {
			b.WriteString(inactiveTab.Render(label))
		}
	}
	b.WriteString("\n\n")
}

func writeTasks(b *strings.Builder, tasks []task.Task, cursor int, now time.Time) {
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("  No hay tareas para mostrar") + "\n\n")
		return
	}
	for i, t := range tasks {
		b.WriteString(formatTask(t, i == cursor, now))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func formatTask(t task.Task, selected bool, now time.Time) string {
	pointer := "  "
	if selected {
		pointer = selectedStyle.Render("> ")
	}
	check := "[ ]"
	title := t.Title
	if t.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	} else if selected {
		title = selectedStyle.Render(title)
	}

	meta := "Creado: " + client.FormatRelative(t.CreatedAt, now)
	if t.UpdatedAt != nil && !t.UpdatedAt.Equal(t.CreatedAt) {
		meta += " · Editado: " + client.FormatRelative(*t.UpdatedAt, now)
	}
	return fmt.Sprintf("%s%s %s  %s", pointer, check, title, mutedStyle.Render(meta))
}

func writeHelp(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Atajos de teclado") + "\n\n")
	b.WriteString("  a            Agregar tarea\n")
	b.WriteString("  space, x     Completar / reabrir\n")
	b.WriteString("  e            Editar\n")
	b.WriteString("  d            Eliminar (y/n para confirmar)\n")
	b.WriteString("  0, 1, 2      Todas / Pendientes / Completadas\n")
	b.WriteString("  j, k         Mover selección\n")
	b.WriteString("  r            Recargar\n")
	b.WriteString("  ?            Mostrar u ocultar ayuda\n")
	b.WriteString("  q, ctrl+c    Salir\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(mutedStyle.Render("? ayuda · q salir"))
	b.WriteString("\n")
}
