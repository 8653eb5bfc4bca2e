package application

import (
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

// buildMenuTree wires the actions menu to m's service. Actions run as
// commands; the model refreshes when their message arrives.
func buildMenuTree(m *Model) *Menu {
	folders := &Menu{
		Title: "Folders",
		Items: []MenuItem{
			{Label: "Select all folders", Action: func() tea.Cmd {
				return func() tea.Msg {
					m.svc.SelectAllFolders()
					return selectionChangedMsg{}
				}
			}},
			{Label: "Clear folders", Action: func() tea.Cmd {
				return func() tea.Msg {
					m.svc.ClearFolders()
					return selectionChangedMsg{}
				}
			}},
			{Label: "Back"},
		},
	}

	lookups := &Menu{
		Title: "Lookup",
		Items: []MenuItem{
			{Label: "Wikipedia: selected artist", Action: m.artistArticleCmd},
			{Label: "Wikipedia: selected album", Action: m.albumArticleCmd},
			{Label: "Back"},
		},
	}

	items := []MenuItem{
		{Label: "Reload collection", Action: m.reload},
		{Label: "Folders ->", Submenu: folders},
		{Label: "Lookup ->", Submenu: lookups},
	}
	if m.exports != nil {
		items = append(items, MenuItem{Label: "Stored exports ->", Submenu: &Menu{
			Title: "Stored exports",
			Items: []MenuItem{
				{Label: "List recent", Action: m.exports.ListRecent},
				{Label: "Delete all", Action: m.exports.DeleteAll},
				{Label: "Back"},
			},
		}})
	}
	items = append(items, MenuItem{Label: "Close", Action: func() tea.Cmd {
		return func() tea.Msg { return menuClosedMsg{} }
	}})

	root := &Menu{Title: "Actions", Items: items}

	linkParents(root, nil)

	return root
}
