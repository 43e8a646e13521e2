package component

// reactTreeJS is the teacher's ReifyReact fiber walk generalized: scoped to
// an optional selector root, depth-bounded, and with props emission gated
// by includeProps instead of always being collected.
const reactTreeJS = `
(selector, maxDepth, includeProps) => {
	const root = selector ? document.querySelector(selector) : (document.querySelector('[data-reactroot]') || document.getElementById('root') || document.body);
	if (!root) return [];
	const fiberKey = Object.keys(root).find(k => k.startsWith('__reactFiber') || k.startsWith('__reactContainer'));
	if (!fiberKey) return [];

	const sanitize = (v, depth) => {
		if (depth > 4) return '[Truncated]';
		if (v === null || v === undefined) return v === null ? null : undefined;
		const t = typeof v;
		if (t === 'string' || t === 'number' || t === 'boolean') return v;
		if (t === 'function') return '[Function ' + (v.name || 'anonymous') + ']';
		if (v instanceof Node) return '[Node ' + v.nodeName.toLowerCase() + (v.id ? '#' + v.id : '') + ']';
		if (Array.isArray(v)) {
			if (v.length > 20) return v.slice(0, 20).map(x => sanitize(x, depth + 1)).concat(['[...truncated]']);
			return v.map(x => sanitize(x, depth + 1));
		}
		if (t === 'object') {
			const out = {};
			let count = 0;
			for (const [k, val] of Object.entries(v)) {
				if (count++ > 30) { out['...'] = '[truncated]'; break; }
				const s = sanitize(val, depth + 1);
				if (s !== undefined) out[k] = s;
			}
			return out;
		}
		return undefined;
	};

	const nameOf = (fiber) =>
		(fiber.type && (fiber.type.displayName || fiber.type.name)) ||
		(fiber.elementType && fiber.elementType.name) ||
		(typeof fiber.type === 'string' ? fiber.type : 'Anonymous');

	const walk = (fiber, depth) => {
		if (!fiber || depth > maxDepth) return null;
		const node = {
			name: nameOf(fiber),
			framework: 'react',
			depth: depth,
			children: [],
		};
		if (includeProps && fiber.memoizedProps && typeof fiber.memoizedProps === 'object') {
			node.props = sanitize(fiber.memoizedProps, 0);
		}
		if (fiber.stateNode && fiber.stateNode.getBoundingClientRect) {
			const r = fiber.stateNode.getBoundingClientRect();
			node.x = r.x; node.y = r.y; node.width = r.width; node.height = r.height;
			node.visible = r.width > 0 && r.height > 0;
		}

		let child = fiber.child;
		while (child) {
			const c = walk(child, depth + 1);
			if (c) node.children.push(c);
			child = child.sibling;
		}
		return node;
	};

	const result = walk(root[fiberKey], 0);
	return result ? [result] : [];
}
`

// reactFindByNameJS mirrors the tree walk but filters by display name and
// reports selector hints instead of a full subtree.
const reactFindByNameJS = `
(name, exact) => {
	const root = document.getElementById('root') || document.body;
	const fiberKey = Object.keys(root).find(k => k.startsWith('__reactFiber') || k.startsWith('__reactContainer'));
	if (!fiberKey) return [];

	const matches = [];
	const stack = [root[fiberKey]];
	const seen = new Set();
	while (stack.length) {
		const fiber = stack.pop();
		if (!fiber || seen.has(fiber)) continue;
		seen.add(fiber);

		const fname = (fiber.type && (fiber.type.displayName || fiber.type.name)) || '';
		const isMatch = exact ? fname === name : fname.toLowerCase().includes(String(name).toLowerCase());
		if (isMatch && fname) {
			let rect = null;
			if (fiber.stateNode && fiber.stateNode.getBoundingClientRect) {
				rect = fiber.stateNode.getBoundingClientRect();
			}
			matches.push({
				name: fname,
				framework: 'react',
				x: rect ? rect.x : 0,
				y: rect ? rect.y : 0,
				width: rect ? rect.width : 0,
				height: rect ? rect.height : 0,
				visible: !!(rect && rect.width > 0 && rect.height > 0),
			});
		}
		if (fiber.child) stack.push(fiber.child);
		if (fiber.sibling) stack.push(fiber.sibling);
	}
	return matches;
}
`

// reactHooksJS extracts memoizedState as an ordered hook list for a
// function component fiber, which is the best introspection React's
// devtools-free runtime state exposes.
const reactHooksJS = `
(selector) => {
	const el = document.querySelector(selector);
	if (!el) return null;
	const fiberKey = Object.keys(el).find(k => k.startsWith('__reactFiber'));
	if (!fiberKey) return null;

	const fiber = el[fiberKey];
	let hookFiber = fiber;
	while (hookFiber && hookFiber.memoizedState === undefined) hookFiber = hookFiber.return;
	if (!hookFiber) return [];

	const hooks = [];
	let hook = hookFiber.memoizedState;
	let i = 0;
	while (hook && i < 50) {
		hooks.push({ index: i, value: (hook.memoizedState !== undefined ? String(hook.memoizedState) : null) });
		hook = hook.next;
		i++;
	}
	return hooks;
}
`


