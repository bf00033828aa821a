package main

import (
	"errors"
	"fmt"

	"github.com/stlalpha/warroom/internal/access"
	"github.com/stlalpha/warroom/internal/asset"
	"github.com/stlalpha/warroom/internal/block"
	"github.com/stlalpha/warroom/internal/group"
	"github.com/stlalpha/warroom/internal/identity"
)

// operationsLoop runs the logged-in menu until the operator logs out.
func (t *terminal) operationsLoop(op *identity.Operator) {
	req := access.Requester{Username: op.Username, Rank: op.Rank, Unit: op.Unit}

	for {
		fmt.Println(headerStyle.Render(fmt.Sprintf(
			"\n  Welcome, Operator %s (Rank: %s - Unit: %s)", op.Username, op.Rank, op.Unit)))
		fmt.Println(headerStyle.Render("                 :: OPERATIONS MENU ::"))
		fmt.Println(infoStyle.Render(
			"  [1] Create New Block/Report\n" +
				"  [2] List Accessible Blocks/Reports\n" +
				"  [3] Open and View Block/Report Content\n" +
				"  [4] Edit an Existing Block/Report\n" +
				"  [5] Delete a Block/Report\n" +
				"  [6] Create Aerospace Asset (Spacecraft, Satellite, etc.)\n" +
				"  [7] List Unit Aerospace Assets\n" +
				"  [8] Send Direct Message\n" +
				"  [9] List My Direct Messages\n" +
				" [10] Create Operations Group\n" +
				" [11] Add Member to Group\n" +
				" [12] List My Groups\n" +
				" [13] Change My Password\n" +
				"  [0] Log Out (Exit)"))

		option, ok := t.prompt.intValue("Enter your option > ")
		if !ok {
			continue
		}

		switch option {
		case 1:
			t.createBlock(op)
		case 2:
			t.listBlocks(req)
		case 3:
			t.openBlock(req)
		case 4:
			t.editBlock(op)
		case 5:
			t.deleteBlock(op)
		case 6:
			t.createAsset(op)
		case 7:
			t.listAssets(op)
		case 8:
			t.sendMessage(op)
		case 9:
			t.listMessages(op)
		case 10:
			t.createGroup(op)
		case 11:
			t.addGroupMember(op)
		case 12:
			t.listGroups(op)
		case 13:
			t.changePassword(op)
		case 0:
			fmt.Println(infoStyle.Render(fmt.Sprintf(
				">>> Disconnecting from '%s' operations network...", op.Username)))
			return
		default:
			fmt.Println(errorStyle.Render(">>> Invalid command. Please try again."))
		}
	}
}

func (t *terminal) createBlock(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Create New Block/Report ---"))
	title := t.prompt.line(fmt.Sprintf("Block title (max. %d characters): ", block.MaxTitle-1))
	content := t.prompt.line(fmt.Sprintf("Content (max. %d characters): ", block.MaxContent-1))
	key, ok := t.prompt.key("Numeric key for encryption: ")
	if !ok {
		return
	}

	fmt.Println("Choose BLOCK TYPE:")
	for i := 0; i < access.NumTypes; i++ {
		fmt.Printf("  %d - %s\n", i+1, access.Type(i))
	}
	typeOption, ok := t.prompt.intValue("Option > ")
	if !ok {
		return
	}

	params := block.CreateParams{
		Owner:      op.Username,
		Title:      title,
		Content:    content,
		Key:        key,
		TypeOption: typeOption,
	}

	// Type-specific prompts mirror the stored fields; anything not asked
	// for stays N/A.
	if typ, ok := access.TypeFromOption(typeOption); ok {
		switch typ {
		case access.TypeClassified:
			minRank, ok := t.prompt.intValue(
				"Minimum rank for access (1-Recruit, 2-Soldier, 3-Officer, 4-Commander): ")
			if !ok {
				return
			}
			params.MinRankOption = minRank
		case access.TypeAssetTelemetry:
			params.LinkedAssetID = t.prompt.line("Linked Aerospace Asset ID (e.g., ASSET001): ")
		case access.TypeGroupMessage:
			params.GroupDest = t.prompt.line("Group Name for the message: ")
		}
	}

	b, err := t.blocks.Create(params)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Block '%s' (%s) created successfully!", b.Title, b.Type)))
}

func (t *terminal) listBlocks(req access.Requester) {
	entries, scanned, err := t.blocks.List(req)
	if err != nil {
		t.fail(err)
		return
	}

	fmt.Println(headerStyle.Render("\n=== Accessible Blocks/Reports ==="))
	switch {
	case scanned == 0:
		fmt.Println(infoStyle.Render("No blocks stored yet."))
	case len(entries) == 0:
		fmt.Println(infoStyle.Render("No blocks accessible to you."))
	default:
		for _, e := range entries {
			line := fmt.Sprintf("%-30s by %-20s [%s]", e.Title, e.Owner, e.Type)
			if e.Annotation != "" {
				line += " (" + e.Annotation + ")"
			}
			fmt.Println(line)
		}
		fmt.Printf("Accessible: %d of %d\n", len(entries), scanned)
	}
}

func (t *terminal) openBlock(req access.Requester) {
	fmt.Println(headerStyle.Render("\n--- Open Block/Report ---"))
	title := t.prompt.line("Block title: ")
	key, ok := t.prompt.key("Decryption key: ")
	if !ok {
		return
	}

	b, err := t.blocks.Open(req, title, key)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Block '%s' by %s (%s)", b.Title, b.Owner, b.Type)))
	fmt.Println(b.Content)
}

func (t *terminal) editBlock(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Edit Block/Report ---"))
	title := t.prompt.line("Title of your block: ")
	currentKey, ok := t.prompt.key("Current key: ")
	if !ok {
		return
	}
	newTitle := t.prompt.line("New title (blank to keep): ")
	newContent := t.prompt.line("New content (blank to keep): ")
	newKey, ok := t.prompt.key("New numeric key (re-enter current key to keep): ")
	if !ok {
		return
	}

	b, err := t.blocks.Edit(block.EditParams{
		Owner:      op.Username,
		Title:      title,
		CurrentKey: currentKey,
		NewTitle:   newTitle,
		NewContent: newContent,
		NewKey:     newKey,
	})
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Block '%s' updated successfully!", b.Title)))
}

func (t *terminal) deleteBlock(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Delete Block/Report ---"))
	title := t.prompt.line("Title of your block: ")
	key, ok := t.prompt.key("Key: ")
	if !ok {
		return
	}

	if err := t.blocks.Delete(op.Username, title, key); err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Block '%s' deleted successfully!", title)))
}

func (t *terminal) createAsset(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Create Aerospace Asset ---"))
	name := t.prompt.line(fmt.Sprintf("Asset name (max. %d characters): ", asset.MaxName-1))

	fmt.Println("Choose ASSET TYPE:")
	for i := 0; i < asset.NumTypes; i++ {
		fmt.Printf("  %d - %s\n", i+1, asset.Type(i))
	}
	typeOption, ok := t.prompt.intValue("Option > ")
	if !ok {
		return
	}

	fmt.Println("Choose ASSET STATUS:")
	for i := 0; i < asset.NumStatuses; i++ {
		fmt.Printf("  %d - %s\n", i+1, asset.Status(i))
	}
	statusOption, ok := t.prompt.intValue("Option > ")
	if !ok {
		return
	}

	location := t.prompt.line(fmt.Sprintf("Location (max. %d characters): ", asset.MaxLocation-1))

	a, err := t.assets.Create(name, typeOption, statusOption, location, op.Unit)
	if err != nil {
		if a == nil {
			t.fail(err)
			return
		}
		// The asset exists even when the counter flush failed.
		fmt.Println(errorStyle.Render(">>> Warning: " + err.Error()))
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Asset '%s' registered with ID %s!", a.Name, a.ID)))
}

func (t *terminal) listAssets(op *identity.Operator) {
	assets, err := t.assets.ListForUnit(op.Unit)
	if err != nil {
		t.fail(err)
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("\n=== Aerospace Assets of Unit %s ===", op.Unit)))
	if len(assets) == 0 {
		fmt.Println(infoStyle.Render("No assets registered for your unit."))
		return
	}
	fmt.Printf("%-12s %-25s %-12s %-15s %-20s\n", "ID", "Name", "Type", "Status", "Location")
	for _, a := range assets {
		fmt.Printf("%-12s %-25s %-12s %-15s %-20s\n", a.ID, a.Name, a.Type, a.Status, a.Location)
	}
	fmt.Printf("Total assets: %d\n", len(assets))
}

func (t *terminal) sendMessage(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Send Direct Message ---"))
	receiver := t.prompt.line("Recipient username: ")
	body := t.prompt.line("Message: ")
	key, ok := t.prompt.key("Numeric key for encryption: ")
	if !ok {
		return
	}

	if err := t.messages.Send(op.Username, receiver, body, key); err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Message sent to '%s'!", receiver)))
}

func (t *terminal) listMessages(op *identity.Operator) {
	previews, err := t.messages.ListFor(op.Username)
	if err != nil {
		t.fail(err)
		return
	}

	fmt.Println(headerStyle.Render("\n=== My Direct Messages ==="))
	if len(previews) == 0 {
		fmt.Println(infoStyle.Render("No messages for you."))
		return
	}
	for i, p := range previews {
		fmt.Printf("%3d. From %-20s [encrypted: %s...]\n", i+1, p.Sender, p.Excerpt)
	}

	if !t.prompt.confirm("\nTo read a specific message, enter 'y'. To return to the menu, enter 'n'. (y/n): ") {
		return
	}
	sender := t.prompt.line("Sender username: ")
	key, ok := t.prompt.key("Decryption key: ")
	if !ok {
		return
	}

	msg, err := t.messages.Read(op.Username, sender, key)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Message from %s:", msg.Sender)))
	fmt.Println(msg.Body)
}

func (t *terminal) createGroup(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Create Operations Group ---"))
	name := t.prompt.line(fmt.Sprintf("Group name (max. %d characters): ", group.MaxName-1))

	g, err := t.groups.Create(name, op.Username)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Group '%s' created successfully!", g.Name)))
}

func (t *terminal) addGroupMember(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Add Member to Group ---"))
	name := t.prompt.line("Group name: ")
	member := t.prompt.line("Username of the new member: ")

	if err := t.groups.AddMember(name, op.Username, member); err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Operator '%s' added to group '%s'!", member, name)))
}

func (t *terminal) listGroups(op *identity.Operator) {
	gs, err := t.groups.ListFor(op.Username)
	if err != nil {
		t.fail(err)
		return
	}

	fmt.Println(headerStyle.Render("\n=== My Operations Groups ==="))
	if len(gs) == 0 {
		fmt.Println(infoStyle.Render("You are not in any group."))
		return
	}
	for _, g := range gs {
		fmt.Printf("%-30s created by %-20s (%d/%d members)\n",
			g.Name, g.Creator, len(g.Members), group.MaxMembers)
	}
}

func (t *terminal) changePassword(op *identity.Operator) {
	fmt.Println(headerStyle.Render("\n--- Change Operator Password ---"))
	current, ok := t.prompt.key("Enter your current password: ")
	if !ok {
		return
	}
	next, ok := t.prompt.key("Enter new password (numeric only): ")
	if !ok {
		return
	}
	confirm, ok := t.prompt.key("Confirm new password: ")
	if !ok {
		return
	}
	if next != confirm {
		fmt.Println(errorStyle.Render(">>> New password and confirmation do not match. Password not changed."))
		return
	}

	if err := t.operators.ChangePassword(op.Username, current, next); err != nil {
		if errors.Is(err, identity.ErrAuthFailed) {
			fmt.Println(errorStyle.Render(">>> Incorrect current password or operator not found."))
			return
		}
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(">>> Password changed successfully!"))
}
